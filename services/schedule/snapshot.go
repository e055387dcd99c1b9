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
)

// Accumulator batches state changes between date advances and emits full
// snapshots.
//
// It is a two-state machine: idle until a mutation marks it dirty, then
// dirty until a flush emits a snapshot and returns it to idle. Flushing
// while idle emits nothing, so an empty stretch of dates never produces
// duplicate snapshots.
type Accumulator struct {
	snapshots []Snapshot
	dirty     bool
}

func newAccumulator() *Accumulator {
	return &Accumulator{}
}

// MarkDirty notes that state changed since the last snapshot.
func (a *Accumulator) MarkDirty() {
	a.dirty = true
}

// Dirty reports whether changes are pending.
func (a *Accumulator) Dirty() bool {
	return a.dirty
}

// Flush emits a snapshot of the table when changes are pending and reports
// whether one was emitted. The snapshot is tagged with date, and lump
// numbers are stamped onto the rows as of that date.
func (a *Accumulator) Flush(table *conntab.Table, lumps *lump.Registry, date time.Time) bool {
	if !a.dirty {
		return false
	}
	a.snapshots = append(a.snapshots, buildSnapshot(table, lumps, date))
	a.dirty = false
	return true
}

// Count returns the number of emitted snapshots.
func (a *Accumulator) Count() int {
	return len(a.snapshots)
}

// Snapshots returns the emitted snapshots in order.
func (a *Accumulator) Snapshots() []Snapshot {
	return a.snapshots
}

// buildSnapshot restates the full table at one instant. Wells walk in
// first-declared order and each well's connections in first-declared cell
// order, so identical state always serializes identically.
func buildSnapshot(table *conntab.Table, lumps *lump.Registry, date time.Time) Snapshot {
	snap := Snapshot{Date: date}
	for _, wellName := range table.Wells() {
		fs := table.WellStatus(wellName)
		snap.Wells = append(snap.Wells, WellState{
			Well:   wellName,
			Status: fs.Status,
			Date:   fs.Date,
			Seq:    fs.Seq,
		})
		for _, c := range table.Connections(wellName) {
			if n, ok := lumps.NumberFor(wellName, c.I, c.J, c.K, date); ok {
				c.Lump = n
			} else {
				c.Lump = 0
			}
			snap.Connections = append(snap.Connections, c)
		}
	}
	return snap
}
