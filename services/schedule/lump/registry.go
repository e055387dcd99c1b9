// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lump

import (
	"fmt"
	"time"
)

// CellRange identifies connection cells belonging to a lump.
//
// I and J are single column/row values where zero means any value on that
// axis. K1..K2 is an inclusive layer span; the pair (0, 0) means any layer.
// Declarations are usually stored as atomic single-layer cells, but the
// sentinel forms survive untouched until resolution.
type CellRange struct {
	I  int `json:"i"`
	J  int `json:"j"`
	K1 int `json:"k1"`
	K2 int `json:"k2"`
}

// Contains reports whether the connection coordinate (i, j, k) falls inside
// the range, honouring the zero sentinels.
func (r CellRange) Contains(i, j, k int) bool {
	if r.I != 0 && r.I != i {
		return false
	}
	if r.J != 0 && r.J != j {
		return false
	}
	if r.K1 == 0 && r.K2 == 0 {
		return true
	}
	return r.K1 <= k && k <= r.K2
}

func (r CellRange) validate() error {
	if r.I < 0 || r.J < 0 || r.K1 < 0 || r.K2 < 0 {
		return fmt.Errorf("%w: (%d, %d, %d..%d)", ErrNegativeCoord, r.I, r.J, r.K1, r.K2)
	}
	if r.K1 == 0 && r.K2 == 0 {
		return nil
	}
	if r.K1 == 0 || r.K2 == 0 {
		return fmt.Errorf("%w: half-defaulted span %d..%d", ErrInvalidSpan, r.K1, r.K2)
	}
	if r.K2 < r.K1 {
		return fmt.Errorf("%w: inverted span %d..%d", ErrInvalidSpan, r.K1, r.K2)
	}
	return nil
}

// version is one dated declaration of a (well, number) pair.
type version struct {
	date  time.Time
	seq   int
	cells []CellRange
}

type entry struct {
	number   int
	versions []version // chronological append order
}

type wellLumps struct {
	numbers map[int]*entry
	order   []int // numbers in first-declared order
}

// Registry holds all lump declarations of a schedule run.
//
// Lookups are as-of-date: a declaration becomes visible on the date it was
// made and a later declaration of the same (well, number) pair supersedes it
// from that later date onward.
type Registry struct {
	wells map[string]*wellLumps
	order []string // wells in first-declared order
}

// NewRegistry returns an empty lump registry.
func NewRegistry() *Registry {
	return &Registry{wells: make(map[string]*wellLumps)}
}

// Declare records the cell set of lump (well, number) effective from date.
//
// The cells replace any earlier declaration of the same pair. Each cell is
// validated before anything is stored, so a failed declaration leaves the
// registry unchanged.
func (g *Registry) Declare(well string, number int, cells []CellRange, date time.Time, seq int) error {
	if well == "" {
		return ErrEmptyWell
	}
	if number <= 0 {
		return fmt.Errorf("%w: got %d for well %q", ErrInvalidNumber, number, well)
	}
	for _, c := range cells {
		if err := c.validate(); err != nil {
			return fmt.Errorf("well %q lump %d: %w", well, number, err)
		}
	}

	wl, ok := g.wells[well]
	if !ok {
		wl = &wellLumps{numbers: make(map[int]*entry)}
		g.wells[well] = wl
		g.order = append(g.order, well)
	}
	e, ok := wl.numbers[number]
	if !ok {
		e = &entry{number: number}
		wl.numbers[number] = e
		wl.order = append(wl.order, number)
	}
	stored := make([]CellRange, len(cells))
	copy(stored, cells)
	e.versions = append(e.versions, version{date: date, seq: seq, cells: stored})
	return nil
}

// RangesFor returns the cell set of lump (well, number) as declared at or
// before asOf. ErrUnknownLump is returned when no such declaration exists.
func (g *Registry) RangesFor(well string, number int, asOf time.Time) ([]CellRange, error) {
	wl, ok := g.wells[well]
	if !ok {
		return nil, fmt.Errorf("%w: well %q lump %d", ErrUnknownLump, well, number)
	}
	e, ok := wl.numbers[number]
	if !ok {
		return nil, fmt.Errorf("%w: well %q lump %d", ErrUnknownLump, well, number)
	}
	v := latestAt(e.versions, asOf)
	if v == nil {
		return nil, fmt.Errorf("%w: well %q lump %d not declared by %s",
			ErrUnknownLump, well, number, asOf.Format(time.DateOnly))
	}
	out := make([]CellRange, len(v.cells))
	copy(out, v.cells)
	return out, nil
}

// NumbersIn returns the lump numbers of well declared at or before asOf and
// falling inside the inclusive [lo, hi] interval, in first-declared order.
func (g *Registry) NumbersIn(well string, lo, hi int, asOf time.Time) []int {
	wl, ok := g.wells[well]
	if !ok {
		return nil
	}
	var numbers []int
	for _, n := range wl.order {
		if n < lo || n > hi {
			continue
		}
		if latestAt(wl.numbers[n].versions, asOf) != nil {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

// NumberFor returns the lump number covering connection (i, j, k) of well as
// of asOf, or false when no declared lump contains the cell. When several
// lumps contain it, the most recently declared one wins.
func (g *Registry) NumberFor(well string, i, j, k int, asOf time.Time) (int, bool) {
	wl, ok := g.wells[well]
	if !ok {
		return 0, false
	}
	var (
		found    bool
		bestNum  int
		bestDate time.Time
		bestSeq  int
	)
	for _, n := range wl.order {
		v := latestAt(wl.numbers[n].versions, asOf)
		if v == nil {
			continue
		}
		contained := false
		for _, c := range v.cells {
			if c.Contains(i, j, k) {
				contained = true
				break
			}
		}
		if !contained {
			continue
		}
		if !found || v.date.After(bestDate) || (v.date.Equal(bestDate) && v.seq > bestSeq) {
			found = true
			bestNum = n
			bestDate = v.date
			bestSeq = v.seq
		}
	}
	return bestNum, found
}

// Wells returns the wells with declarations in first-declared order.
func (g *Registry) Wells() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Count returns the number of distinct (well, number) pairs declared.
func (g *Registry) Count() int {
	total := 0
	for _, wl := range g.wells {
		total += len(wl.order)
	}
	return total
}

// latestAt returns the last version dated at or before asOf, or nil.
// Versions are stored in chronological order, so the scan runs backwards.
func latestAt(versions []version, asOf time.Time) *version {
	for i := len(versions) - 1; i >= 0; i-- {
		if !versions[i].date.After(asOf) {
			return &versions[i]
		}
	}
	return nil
}
