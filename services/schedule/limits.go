// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schedule

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// limitsValidate is the validator instance for Limits structs.
var limitsValidate *validator.Validate

func init() {
	limitsValidate = validator.New()
}

// Limits bounds the size of a schedule run. A zero field disables that
// bound.
type Limits struct {
	// MaxEvents bounds the number of records a run folds.
	MaxEvents int `validate:"gte=0"`

	// MaxWells bounds the number of wells in the connection table.
	MaxWells int `validate:"gte=0"`

	// MaxConnsPerWell bounds the connections of a single well.
	MaxConnsPerWell int `validate:"gte=0"`

	// MaxListOperands bounds the operand count of a single list mutation.
	MaxListOperands int `validate:"gte=0"`

	// MaxSnapshots bounds the snapshots a run may emit.
	MaxSnapshots int `validate:"gte=0"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxEvents:       1_000_000,
		MaxWells:        10_000,
		MaxConnsPerWell: 10_000,
		MaxListOperands: 1_000,
		MaxSnapshots:    100_000,
	}
}

// Validate rejects negative bounds.
func (l Limits) Validate() error {
	if err := limitsValidate.Struct(l); err != nil {
		return fmt.Errorf("invalid limits: %w", err)
	}
	return nil
}
