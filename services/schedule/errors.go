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

import "errors"

// Sentinel errors for the schedule service.
var (
	// ErrNilContext indicates a nil context was passed to Run.
	ErrNilContext = errors.New("context must not be nil")

	// ErrDateOrder indicates a date record moved the clock backwards.
	ErrDateOrder = errors.New("schedule dates must be non-decreasing")

	// ErrNoDate indicates a relative time step arrived before any date was
	// established.
	ErrNoDate = errors.New("no current date established")

	// ErrInvalidSpan indicates an inverted range or a negative step.
	ErrInvalidSpan = errors.New("range start exceeds end")

	// ErrInvalidEvent indicates a malformed schedule record.
	ErrInvalidEvent = errors.New("invalid schedule record")

	// ErrNoWellHead indicates a connection left its cell defaulted but the
	// well's head coordinates were never declared.
	ErrNoWellHead = errors.New("well head coordinates unknown")

	// ErrUnknownWell indicates a directive addressed a well that has no
	// connections.
	ErrUnknownWell = errors.New("well has no connections")

	// ErrNoConnections indicates a connection-level directive matched no
	// existing connection of its target well.
	ErrNoConnections = errors.New("directive matches no connection")

	// ErrSelectorConflict indicates a directive constrained both cell
	// coordinates and a lump-number interval.
	ErrSelectorConflict = errors.New("cell and lump selectors are mutually exclusive")

	// ErrLumpPair indicates a malformed lump-number interval on a
	// directive: a single bound, a zero bound, a negative bound, or an
	// inverted interval.
	ErrLumpPair = errors.New("malformed lump-number interval")

	// ErrLimit indicates a configured size limit was exceeded.
	ErrLimit = errors.New("schedule limit exceeded")
)
