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

	"github.com/AleutianAI/wellsched/services/schedule/wellist"
)

// Event is one record of a schedule stream.
//
// The set of implementations is closed: a session folds the stream with an
// exhaustive type switch, so new record kinds belong here.
type Event interface {
	// Kind returns the record kind for logs and error messages.
	Kind() string

	event()
}

// DateEvent advances the run clock to an absolute calendar date.
type DateEvent struct {
	Date time.Time
}

// Kind implements Event.
func (DateEvent) Kind() string { return "date" }

func (DateEvent) event() {}

// StepEvent advances the run clock by one or more whole-day steps. The
// steps are summed before the clock moves.
type StepEvent struct {
	Days []int
}

// Kind implements Event.
func (StepEvent) Kind() string { return "step" }

func (StepEvent) event() {}

// WellEvent declares a well and its head cell column/row. Connections of
// that well with defaulted coordinates inherit the head values. A later
// declaration of the same well replaces the head.
type WellEvent struct {
	Well  string
	HeadI int
	HeadJ int
}

// Kind implements Event.
func (WellEvent) Kind() string { return "well" }

func (WellEvent) event() {}

// ConnEvent defines connections of a well over the layer span K1..K2, one
// connection per layer. I or J at or below zero inherit the well's head
// values. Status is the initial status spelling; empty means open.
type ConnEvent struct {
	Well   string
	I      int
	J      int
	K1     int
	K2     int
	Status string
}

// Kind implements Event.
func (ConnEvent) Kind() string { return "connection" }

func (ConnEvent) event() {}

// Span returns the layer range for unrolling.
func (e ConnEvent) Span() (int, int) { return e.K1, e.K2 }

// WithSpan returns a copy of the record covering only the given layers.
func (e ConnEvent) WithSpan(k1, k2 int) ConnEvent {
	e.K1, e.K2 = k1, k2
	return e
}

// ListEvent mutates a named well list. A leading * on the name is
// tolerated and stripped. Operands may be concrete well names, wildcard
// templates, or *LIST references; see the wellist package.
type ListEvent struct {
	Name     string
	Action   wellist.Action
	Operands []string
}

// Kind implements Event.
func (ListEvent) Kind() string { return "list" }

func (ListEvent) event() {}

// LumpEvent declares that the cells (I, J, K1..K2) of a well belong to lump
// Number. Zero coordinates are all-values sentinels.
type LumpEvent struct {
	Well   string
	I      int
	J      int
	K1     int
	K2     int
	Number int
}

// Kind implements Event.
func (LumpEvent) Kind() string { return "lump" }

func (LumpEvent) event() {}

// Span returns the layer range for unrolling.
func (e LumpEvent) Span() (int, int) { return e.K1, e.K2 }

// WithSpan returns a copy of the record covering only the given layers.
func (e LumpEvent) WithSpan(k1, k2 int) LumpEvent {
	e.K1, e.K2 = k1, k2
	return e
}

// DirectiveEvent opens or closes wells or single connections.
//
// Target names a well, a wildcard template, or, with a leading *, a well
// list. With every selector defaulted the directive is well-level and only
// touches the well's standalone flag. I, J, K at or above one select
// connections by cell; zero or negative values leave the axis
// unconstrained. LumpLo/LumpHi select connections by lump-number interval
// instead; nil means absent. Cell and lump selectors are mutually
// exclusive.
type DirectiveEvent struct {
	Target string
	Status string
	I      int
	J      int
	K      int
	LumpLo *int
	LumpHi *int
}

// Kind implements Event.
func (DirectiveEvent) Kind() string { return "directive" }

func (DirectiveEvent) event() {}
