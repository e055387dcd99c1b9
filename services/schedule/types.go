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
	"time"

	"github.com/AleutianAI/wellsched/services/schedule/conntab"
	"github.com/AleutianAI/wellsched/services/schedule/lump"
	"github.com/AleutianAI/wellsched/services/schedule/wellist"
)

// WellState is one well's standalone open/closed flag in a snapshot. The
// flag keeps the directive spelling that set it, so a stopped well reads
// STOP while a shut well reads SHUT. Date and Seq record the directive that
// last changed the flag; a zero Date means no well-level directive has
// changed it.
type WellState struct {
	Well   string             `json:"well"`
	Status conntab.WellStatus `json:"status"`
	Date   time.Time          `json:"date"`
	Seq    int                `json:"seq"`
}

// Snapshot is the complete connection state at one change instant.
//
// Connections restate every connection of every well, not just the changed
// ones, each row carrying the date its current status took effect. A
// snapshot therefore needs no predecessor to be interpreted. Date is the
// instant the snapshot describes; it is zero when the run never saw a date
// record.
type Snapshot struct {
	Date        time.Time            `json:"date"`
	Connections []conntab.Connection `json:"connections"`
	Wells       []WellState          `json:"wells"`
}

// Stats summarizes a completed run.
type Stats struct {
	Events      int           `json:"events"`
	Wells       int           `json:"wells"`
	Connections int           `json:"connections"`
	Directives  int           `json:"directives"`
	Lists       int           `json:"lists"`
	Lumps       int           `json:"lumps"`
	Snapshots   int           `json:"snapshots"`
	Duration    time.Duration `json:"duration"`
}

// Result is the outcome of folding a schedule stream. On error the result
// still carries everything resolved up to the failing record.
type Result struct {
	// RunID identifies the run in logs and traces.
	RunID string

	// Snapshots are the emitted connection states in date order.
	Snapshots []Snapshot

	// Lists is the named well list registry after the fold.
	Lists *wellist.Registry

	// Lumps is the lump registry after the fold.
	Lumps *lump.Registry

	// Stats summarizes the run.
	Stats Stats
}
