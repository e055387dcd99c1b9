// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wellist

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/wellsched/services/schedule/wellpat"
)

// Action is the verb of a list mutation.
type Action string

const (
	// ActionDefine creates a list or replaces its membership.
	ActionDefine Action = "NEW"

	// ActionAdd unions wells into an existing list.
	ActionAdd Action = "ADD"

	// ActionRemove drops wells from an existing list.
	ActionRemove Action = "DEL"

	// ActionMove adds wells to a list, creating it when absent, and removes
	// them from every other list.
	ActionMove Action = "MOV"
)

// Universe supplies the well names known to exist as of a date. Wildcard
// operands are expanded against it.
type Universe func(asOf time.Time) []string

// Mutation is one applied list action together with the membership it
// produced.
type Mutation struct {
	Date     time.Time `json:"date"`
	Seq      int       `json:"seq"`
	Action   Action    `json:"action"`
	Operands []string  `json:"operands,omitempty"`
	Members  []string  `json:"members"`
}

// ListState is one list's membership at a point in time.
type ListState struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// DateState captures every defined list's membership at one date.
type DateState struct {
	Date  time.Time   `json:"date"`
	Lists []ListState `json:"lists"`
}

type list struct {
	name string
	hist []Mutation // chronological append order, never empty once created
}

// at returns the membership as of asOf, or false when the list did not
// exist yet at that date.
func (l *list) at(asOf time.Time) ([]string, bool) {
	for i := len(l.hist) - 1; i >= 0; i-- {
		if !l.hist[i].Date.After(asOf) {
			return copyStrings(l.hist[i].Members), true
		}
	}
	return nil, false
}

func (l *list) current() []string {
	if len(l.hist) == 0 {
		return nil
	}
	return l.hist[len(l.hist)-1].Members
}

// Registry holds the named well lists of a schedule run.
//
// Members are stored sorted alphabetically and always as concrete well
// names: wildcard operands and list references are expanded at mutation
// time, so later changes to the universe or to a referenced list do not
// retroactively alter stored membership.
type Registry struct {
	lists    map[string]*list
	order    []string // lists in first-defined order
	universe Universe
}

// NewRegistry returns an empty registry. A nil universe resolves every
// wildcard operand to nothing.
func NewRegistry(universe Universe) *Registry {
	return &Registry{lists: make(map[string]*list), universe: universe}
}

// ResolveMembers expands mutation operands into concrete well names as of a
// date, preserving first-occurrence order and dropping duplicates.
//
// An operand starting with an unescaped * references another list and
// resolves to that list's membership at asOf. Operands containing wildcards
// expand against the universe. Anything else is kept verbatim.
func (r *Registry) ResolveMembers(operands []string, asOf time.Time) ([]string, error) {
	seen := make(map[string]bool, len(operands))
	out := make([]string, 0, len(operands))
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, op := range operands {
		switch {
		case op == "":
			return nil, fmt.Errorf("operand: %w", wellpat.ErrEmptyTemplate)
		case strings.HasPrefix(op, "*") && len(op) > 1:
			members, err := r.MembersAsOf(op[1:], asOf)
			if err != nil {
				return nil, err
			}
			for _, m := range members {
				add(m)
			}
		case wellpat.HasWildcard(op):
			p, err := wellpat.Compile(op)
			if err != nil {
				return nil, err
			}
			var names []string
			if r.universe != nil {
				names = r.universe(asOf)
			}
			for _, m := range p.Filter(names) {
				add(m)
			}
		default:
			add(op)
		}
	}
	return out, nil
}

// Define creates the list or replaces its membership with the resolved
// operands, effective from date.
func (r *Registry) Define(name string, operands []string, date time.Time, seq int) error {
	if name == "" {
		return MutationError{List: name, Action: ActionDefine, Err: ErrEmptyName}
	}
	members, err := r.ResolveMembers(operands, date)
	if err != nil {
		return MutationError{List: name, Action: ActionDefine, Err: err}
	}
	l := r.ensure(name)
	l.hist = append(l.hist, Mutation{
		Date:     date,
		Seq:      seq,
		Action:   ActionDefine,
		Operands: copyStrings(operands),
		Members:  sortedUnique(members),
	})
	return nil
}

// Add unions the resolved operands into an existing list.
func (r *Registry) Add(name string, operands []string, date time.Time, seq int) error {
	l, ok := r.lists[name]
	if !ok {
		return MutationError{List: name, Action: ActionAdd, Err: ErrUnknownList}
	}
	members, err := r.ResolveMembers(operands, date)
	if err != nil {
		return MutationError{List: name, Action: ActionAdd, Err: err}
	}
	l.hist = append(l.hist, Mutation{
		Date:     date,
		Seq:      seq,
		Action:   ActionAdd,
		Operands: copyStrings(operands),
		Members:  sortedUnique(append(copyStrings(l.current()), members...)),
	})
	return nil
}

// Remove drops the resolved operands from an existing list. Operands not
// present in the list are ignored.
func (r *Registry) Remove(name string, operands []string, date time.Time, seq int) error {
	l, ok := r.lists[name]
	if !ok {
		return MutationError{List: name, Action: ActionRemove, Err: ErrUnknownList}
	}
	members, err := r.ResolveMembers(operands, date)
	if err != nil {
		return MutationError{List: name, Action: ActionRemove, Err: err}
	}
	l.hist = append(l.hist, Mutation{
		Date:     date,
		Seq:      seq,
		Action:   ActionRemove,
		Operands: copyStrings(operands),
		Members:  subtract(l.current(), toSet(members)),
	})
	return nil
}

// Move adds the resolved operands to the list, creating it when absent, and
// removes them from every other list. Lists that actually lose wells get a
// mutation of their own recording the removal.
func (r *Registry) Move(name string, operands []string, date time.Time, seq int) error {
	if name == "" {
		return MutationError{List: name, Action: ActionMove, Err: ErrEmptyName}
	}
	members, err := r.ResolveMembers(operands, date)
	if err != nil {
		return MutationError{List: name, Action: ActionMove, Err: err}
	}

	l := r.ensure(name)
	l.hist = append(l.hist, Mutation{
		Date:     date,
		Seq:      seq,
		Action:   ActionMove,
		Operands: copyStrings(operands),
		Members:  sortedUnique(append(copyStrings(l.current()), members...)),
	})

	moved := toSet(members)
	for _, other := range r.order {
		if other == name {
			continue
		}
		ol := r.lists[other]
		cur := ol.current()
		kept := subtract(cur, moved)
		if len(kept) == len(cur) {
			continue
		}
		removed := subtract(cur, toSet(kept))
		ol.hist = append(ol.hist, Mutation{
			Date:     date,
			Seq:      seq,
			Action:   ActionMove,
			Operands: removed,
			Members:  kept,
		})
	}
	return nil
}

// Members returns the current membership of a list.
func (r *Registry) Members(name string) ([]string, error) {
	l, ok := r.lists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return copyStrings(l.current()), nil
}

// MembersAsOf returns the membership of a list as of a date. A list defined
// only after asOf counts as unknown.
func (r *Registry) MembersAsOf(name string, asOf time.Time) ([]string, error) {
	l, ok := r.lists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	members, ok := l.at(asOf)
	if !ok {
		return nil, fmt.Errorf("%w: %q at %s", ErrUnknownList, name, asOf.Format(time.DateOnly))
	}
	return members, nil
}

// History returns every mutation applied to a list in order.
func (r *Registry) History(name string) ([]Mutation, error) {
	l, ok := r.lists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	out := make([]Mutation, len(l.hist))
	copy(out, l.hist)
	return out, nil
}

// Names returns the defined list names in first-defined order.
func (r *Registry) Names() []string {
	return copyStrings(r.order)
}

// Count returns the number of defined lists.
func (r *Registry) Count() int {
	return len(r.order)
}

// StatesByDate returns every list's membership at each date on which any
// list changed, dates ascending, lists in first-defined order. Lists not
// yet defined at a date are omitted.
func (r *Registry) StatesByDate() []DateState {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, name := range r.order {
		for _, m := range r.lists[name].hist {
			if !seen[m.Date] {
				seen[m.Date] = true
				dates = append(dates, m.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]DateState, 0, len(dates))
	for _, d := range dates {
		st := DateState{Date: d}
		for _, name := range r.order {
			if members, ok := r.lists[name].at(d); ok {
				st.Lists = append(st.Lists, ListState{Name: name, Members: members})
			}
		}
		out = append(out, st)
	}
	return out
}

func (r *Registry) ensure(name string) *list {
	l, ok := r.lists[name]
	if !ok {
		l = &list{name: name}
		r.lists[name] = l
		r.order = append(r.order, name)
	}
	return l
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func sortedUnique(in []string) []string {
	set := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !set[s] {
			set[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(in []string) map[string]bool {
	set := make(map[string]bool, len(in))
	for _, s := range in {
		set[s] = true
	}
	return set
}

// subtract returns the members of in not present in drop, preserving order.
func subtract(in []string, drop map[string]bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !drop[s] {
			out = append(out, s)
		}
	}
	return out
}
