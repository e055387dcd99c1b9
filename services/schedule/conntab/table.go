// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package conntab holds the working connection table of a schedule run.
package conntab

import "time"

// Status is the state of a single well connection.
type Status string

const (
	// StatusOpen marks a connection flowing.
	StatusOpen Status = "OPEN"

	// StatusShut marks a connection closed.
	StatusShut Status = "SHUT"
)

// WellStatus is the standalone open/closed flag of a whole well. It keeps
// the normalized directive spelling, so SHUT and STOP stay distinguishable.
type WellStatus string

const (
	// WellOpen is the default flag of every well.
	WellOpen WellStatus = "OPEN"

	// WellShut marks a well shut by a well-level directive.
	WellShut WellStatus = "SHUT"

	// WellStop marks a well stopped by a well-level directive.
	WellStop WellStatus = "STOP"
)

// Coord is a grid cell: column I, row J, layer K. All three are 1-based.
type Coord struct {
	I int `json:"i"`
	J int `json:"j"`
	K int `json:"k"`
}

// Connection is one well-to-cell connection with its current status.
//
// Date and Seq record when and by which schedule record the current status
// was set. A zero Date means the record carried no date. Lump is the lump
// number covering the cell (zero when none) and is stamped when snapshots
// are built, not when the connection is stored.
type Connection struct {
	Well   string    `json:"well"`
	I      int       `json:"i"`
	J      int       `json:"j"`
	K      int       `json:"k"`
	Status Status    `json:"status"`
	Lump   int       `json:"lump,omitempty"`
	Date   time.Time `json:"date"`
	Seq    int       `json:"seq"`
}

// Coord returns the connection's grid cell.
func (c Connection) Coord() Coord {
	return Coord{I: c.I, J: c.J, K: c.K}
}

// FlagState is a well's standalone open/closed flag with its provenance.
// A zero Date means no well-level directive has changed the flag.
type FlagState struct {
	Status WellStatus `json:"status"`
	Date   time.Time  `json:"date"`
	Seq    int        `json:"seq"`
}

// well is one well's slice of the table.
type well struct {
	conns map[Coord]int // cell -> index into order
	order []Connection  // first-declared cell order
	flag  FlagState
}

// Table is the full connection state of a schedule run at one instant.
//
// # Description
//
// The table maps every well to its connections. Wells iterate in
// first-declared order and each well's connections in first-declared cell
// order, so repeated walks over the same table produce identical output.
// Storing a cell that already exists replaces its connection in place
// without disturbing that order.
//
// # Thread Safety
//
// NOT safe for concurrent use; the owning session synchronizes.
type Table struct {
	wells map[string]*well
	order []string // wells in first-declared order
	conns int      // total connection count
}

// NewTable returns an empty connection table.
func NewTable() *Table {
	return &Table{wells: make(map[string]*well)}
}

// Upsert stores a connection, replacing the existing record for the same
// (well, cell) pair when present.
func (t *Table) Upsert(c Connection) {
	w, ok := t.wells[c.Well]
	if !ok {
		w = &well{
			conns: make(map[Coord]int),
			flag:  FlagState{Status: WellOpen},
		}
		t.wells[c.Well] = w
		t.order = append(t.order, c.Well)
	}
	coord := c.Coord()
	if i, ok := w.conns[coord]; ok {
		w.order[i] = c
		return
	}
	w.conns[coord] = len(w.order)
	w.order = append(w.order, c)
	t.conns++
}

// Get returns the connection at a cell of a well.
func (t *Table) Get(wellName string, coord Coord) (Connection, bool) {
	w, ok := t.wells[wellName]
	if !ok {
		return Connection{}, false
	}
	i, ok := w.conns[coord]
	if !ok {
		return Connection{}, false
	}
	return w.order[i], true
}

// HasWell reports whether the well has at least one connection.
func (t *Table) HasWell(wellName string) bool {
	_, ok := t.wells[wellName]
	return ok
}

// Wells returns the well names in first-declared order.
func (t *Table) Wells() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Connections returns copies of a well's connections in first-declared cell
// order.
func (t *Table) Connections(wellName string) []Connection {
	w, ok := t.wells[wellName]
	if !ok {
		return nil
	}
	out := make([]Connection, len(w.order))
	copy(out, w.order)
	return out
}

// Match returns a well's connections whose cell matches the selector, in
// first-declared cell order. A zero selector value leaves that axis
// unconstrained. With all three axes fixed the lookup is a point query.
func (t *Table) Match(wellName string, i, j, k int) []Connection {
	w, ok := t.wells[wellName]
	if !ok {
		return nil
	}
	if i != 0 && j != 0 && k != 0 {
		if idx, ok := w.conns[Coord{I: i, J: j, K: k}]; ok {
			return []Connection{w.order[idx]}
		}
		return nil
	}
	var out []Connection
	for _, c := range w.order {
		if i != 0 && c.I != i {
			continue
		}
		if j != 0 && c.J != j {
			continue
		}
		if k != 0 && c.K != k {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SetWellStatus updates the standalone flag of a well. It reports false
// when the well has no connections yet.
func (t *Table) SetWellStatus(wellName string, flag WellStatus, date time.Time, seq int) bool {
	w, ok := t.wells[wellName]
	if !ok {
		return false
	}
	w.flag = FlagState{Status: flag, Date: date, Seq: seq}
	return true
}

// WellStatus returns a well's standalone flag. A well whose flag was never
// changed by a well-level directive reports WellOpen with a zero date.
func (t *Table) WellStatus(wellName string) FlagState {
	w, ok := t.wells[wellName]
	if !ok {
		return FlagState{Status: WellOpen}
	}
	return w.flag
}

// CountWells returns the number of wells with connections.
func (t *Table) CountWells() int {
	return len(t.order)
}

// CountConnections returns the total number of stored connections.
func (t *Table) CountConnections() int {
	return t.conns
}

// ConnectionsOf returns the number of connections of one well.
func (t *Table) ConnectionsOf(wellName string) int {
	w, ok := t.wells[wellName]
	if !ok {
		return 0
	}
	return len(w.order)
}
