// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lump tracks connection-lump declarations per well.
//
// A lump groups a well's connections under a positive integer number so
// that later open/shut directives can address the whole group at once.
// Declarations are dated: re-declaring the same (well, number) pair replaces
// the earlier cell set from that date onward while the history remains
// queryable.
//
// # Thread Safety
//
// Registry is not safe for concurrent mutation. The schedule session owns a
// registry per run and folds events into it sequentially.
package lump

import "errors"

// Sentinel errors for lump declaration and lookup.
var (
	// ErrUnknownLump is returned when no declaration for the requested
	// (well, number) pair exists at or before the query date.
	ErrUnknownLump = errors.New("lump not declared")

	// ErrNegativeCoord is returned when a declared cell carries a negative
	// coordinate. Zero is the all-values sentinel and stays legal.
	ErrNegativeCoord = errors.New("lump cell coordinate is negative")

	// ErrInvalidSpan is returned for an inverted or half-defaulted layer
	// span in a declared cell range.
	ErrInvalidSpan = errors.New("lump layer span is invalid")

	// ErrInvalidNumber is returned when a declaration carries a
	// non-positive lump number.
	ErrInvalidNumber = errors.New("lump number must be positive")

	// ErrEmptyWell is returned when a declaration carries no well name.
	ErrEmptyWell = errors.New("lump declaration has no well name")
)
