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
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/wellsched/services/schedule/config"
	"github.com/AleutianAI/wellsched/services/schedule/conntab"
	"github.com/AleutianAI/wellsched/services/schedule/lump"
	"github.com/AleutianAI/wellsched/services/schedule/wellist"
	"github.com/AleutianAI/wellsched/services/schedule/wellpat"
)

// Effect summarizes what one directive changed.
type Effect struct {
	// Wells is the number of target wells whose state changed.
	Wells int

	// Rows is the number of connection records whose status changed.
	Rows int

	// WellLevel reports that only standalone well flags changed.
	WellLevel bool
}

// Changed reports whether the directive altered any state.
func (e Effect) Changed() bool {
	return e.Wells > 0
}

// Resolver applies open/shut directives to the connection table.
//
// Application proceeds in four steps: the target is expanded to concrete
// wells, the granularity (whole well or single connections) is decided from
// the selectors, the status spelling is normalized through the status
// table, and the change is written.
type Resolver struct {
	table  *conntab.Table
	lists  *wellist.Registry
	lumps  *lump.Registry
	status *config.StatusTable
	logger *slog.Logger
}

// NewResolver wires a resolver to the state it operates on. A nil logger
// falls back to slog.Default().
func NewResolver(table *conntab.Table, lists *wellist.Registry, lumps *lump.Registry, status *config.StatusTable, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		table:  table,
		lists:  lists,
		lumps:  lumps,
		status: status,
		logger: logger,
	}
}

// Apply resolves one directive effective at date.
//
// A directive with every selector defaulted is well-level: it sets the
// standalone flag of each target well and leaves connection statuses
// untouched. Any cell axis or a lump-number interval makes it
// connection-level; such a directive must match at least one existing
// connection per target well. A wildcard target matching no wells is a
// logged no-op.
//
// Rows and flags already carrying the target status are left as they are,
// including their effective date, so re-applying a directive changes
// nothing.
func (r *Resolver) Apply(d DirectiveEvent, date time.Time, seq int) (Effect, error) {
	if d.Target == "" {
		return Effect{}, fmt.Errorf("%w: directive has no target", ErrInvalidEvent)
	}

	i, j, k := clampAxis(d.I), clampAxis(d.J), clampAxis(d.K)

	lumpSel, lo, hi, err := lumpInterval(d.LumpLo, d.LumpHi)
	if err != nil {
		return Effect{}, fmt.Errorf("target %q: %w", d.Target, err)
	}
	if lumpSel && (i != 0 || j != 0 || k != 0) {
		return Effect{}, fmt.Errorf("%w: target %q", ErrSelectorConflict, d.Target)
	}

	targets, err := r.expandTarget(d.Target, date)
	if err != nil {
		return Effect{}, err
	}
	if len(targets) == 0 {
		r.logger.Debug("directive template matched no wells",
			slog.String("target", d.Target))
		return Effect{}, nil
	}

	class, spelling := r.classify(d.Status)

	wellLevel := !lumpSel && i == 0 && j == 0 && k == 0
	eff := Effect{WellLevel: wellLevel}

	for _, wellName := range targets {
		if wellLevel {
			flag := conntab.WellOpen
			if class == config.ClassClosed {
				flag = conntab.WellStatus(spelling)
			}
			if r.table.WellStatus(wellName).Status != flag {
				r.table.SetWellStatus(wellName, flag, date, seq)
				eff.Wells++
			}
			continue
		}

		var matched []conntab.Connection
		if lumpSel {
			matched, err = r.matchLumps(wellName, lo, hi, date)
			if err != nil {
				return eff, err
			}
			if len(matched) == 0 {
				return eff, fmt.Errorf("%w: well %q lumps %d..%d", ErrNoConnections, wellName, lo, hi)
			}
		} else {
			matched = r.table.Match(wellName, i, j, k)
			if len(matched) == 0 {
				return eff, fmt.Errorf("%w: well %q cell (%d, %d, %d)", ErrNoConnections, wellName, i, j, k)
			}
		}

		st := conntab.StatusOpen
		if class == config.ClassClosed {
			st = conntab.StatusShut
		}
		changed := 0
		for _, c := range matched {
			if c.Status == st {
				continue
			}
			c.Status = st
			c.Date = date
			c.Seq = seq
			r.table.Upsert(c)
			changed++
		}
		if changed > 0 {
			eff.Wells++
			eff.Rows += changed
		}
	}

	return eff, nil
}

// expandTarget turns a directive target into concrete well names.
//
// A leading unescaped * references a well list; every member must have
// connections. A wildcard template filters the wells of the table and may
// match nothing. A concrete name must have connections.
func (r *Resolver) expandTarget(target string, asOf time.Time) ([]string, error) {
	if strings.HasPrefix(target, "*") && len(target) > 1 {
		listName := target[1:]
		members, err := r.lists.MembersAsOf(listName, asOf)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if !r.table.HasWell(m) {
				return nil, fmt.Errorf("%w: %q in list %q", ErrUnknownWell, m, listName)
			}
		}
		return members, nil
	}

	if wellpat.HasWildcard(target) {
		p, err := wellpat.Compile(target)
		if err != nil {
			return nil, err
		}
		return p.Filter(r.table.Wells()), nil
	}

	if !r.table.HasWell(target) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWell, target)
	}
	return []string{target}, nil
}

// matchLumps returns the connections of a well covered by any lump in the
// [lo, hi] number interval as of a date. At least one lump of the interval
// must be declared.
func (r *Resolver) matchLumps(wellName string, lo, hi int, asOf time.Time) ([]conntab.Connection, error) {
	numbers := r.lumps.NumbersIn(wellName, lo, hi, asOf)
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: well %q interval %d..%d", lump.ErrUnknownLump, wellName, lo, hi)
	}

	var ranges []lump.CellRange
	for _, n := range numbers {
		rs, err := r.lumps.RangesFor(wellName, n, asOf)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, rs...)
	}

	var matched []conntab.Connection
	for _, c := range r.table.Connections(wellName) {
		for _, cr := range ranges {
			if cr.Contains(c.I, c.J, c.K) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched, nil
}

// classify normalizes a status spelling to its effect class and canonical
// uppercase form. Unknown spellings are logged and treated as closing.
func (r *Resolver) classify(spelling string) (config.Class, string) {
	class, ok := r.status.Classify(spelling)
	if !ok {
		r.logger.Warn("unknown directive status spelling, treating as shut",
			slog.String("spelling", spelling))
		config.RecordUnknownSpelling()
		return config.ClassClosed, string(conntab.StatusShut)
	}
	return class, strings.ToUpper(strings.TrimSpace(spelling))
}

// clampAxis treats non-positive selector values as unconstrained.
func clampAxis(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// lumpInterval validates the optional lump-number interval of a directive.
func lumpInterval(lo, hi *int) (bool, int, int, error) {
	if lo == nil && hi == nil {
		return false, 0, 0, nil
	}
	if lo == nil || hi == nil {
		return false, 0, 0, fmt.Errorf("%w: single bound", ErrLumpPair)
	}
	a, b := *lo, *hi
	if a < 0 || b < 0 {
		return false, 0, 0, fmt.Errorf("%w: negative bound %d..%d", ErrLumpPair, a, b)
	}
	if a == 0 || b == 0 {
		return false, 0, 0, fmt.Errorf("%w: zero bound %d..%d not supported", ErrLumpPair, a, b)
	}
	if b < a {
		return false, 0, 0, fmt.Errorf("%w: inverted interval %d..%d", ErrLumpPair, a, b)
	}
	return true, a, b, nil
}
