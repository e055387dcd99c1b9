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
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClock_AdvanceTo(t *testing.T) {
	c := NewClock(time.Time{})

	if _, ok := c.Current(); ok {
		t.Fatal("new clock should be unset")
	}

	if err := c.AdvanceTo(date(2001, 5, 1)); err != nil {
		t.Fatalf("AdvanceTo: %v", err)
	}
	got, ok := c.Current()
	if !ok || !got.Equal(date(2001, 5, 1)) {
		t.Errorf("Current() = %v, %v; want 2001-05-01, true", got, ok)
	}

	// Revisiting the current date is a no-op
	if err := c.AdvanceTo(date(2001, 5, 1)); err != nil {
		t.Errorf("equal date should be allowed: %v", err)
	}

	if err := c.AdvanceTo(date(2001, 6, 1)); err != nil {
		t.Fatalf("AdvanceTo forward: %v", err)
	}
}

func TestClock_AdvanceTo_Backwards(t *testing.T) {
	c := NewClock(date(2001, 6, 1))

	err := c.AdvanceTo(date(2001, 5, 1))
	if err == nil {
		t.Fatal("expected error for backwards date")
	}
	if !errors.Is(err, ErrDateOrder) {
		t.Errorf("expected ErrDateOrder, got: %v", err)
	}

	// Failed advance must not move the clock
	got, _ := c.Current()
	if !got.Equal(date(2001, 6, 1)) {
		t.Errorf("clock moved to %v after failed advance", got)
	}
}

func TestClock_AdvanceTo_NormalizesToMidnightUTC(t *testing.T) {
	c := NewClock(time.Time{})

	loc := time.FixedZone("UTC+2", 2*60*60)
	if err := c.AdvanceTo(time.Date(2001, 5, 1, 15, 30, 0, 0, loc)); err != nil {
		t.Fatalf("AdvanceTo: %v", err)
	}

	got, _ := c.Current()
	if !got.Equal(date(2001, 5, 1)) {
		t.Errorf("Current() = %v, want midnight UTC of 2001-05-01", got)
	}
}

func TestClock_AdvanceBy(t *testing.T) {
	c := NewClock(date(2001, 5, 1))

	if err := c.AdvanceBy(5); err != nil {
		t.Fatalf("AdvanceBy: %v", err)
	}
	got, _ := c.Current()
	if !got.Equal(date(2001, 5, 6)) {
		t.Errorf("Current() = %v, want 2001-05-06", got)
	}

	// Zero days is allowed and moves nothing
	if err := c.AdvanceBy(0); err != nil {
		t.Errorf("AdvanceBy(0): %v", err)
	}
	got, _ = c.Current()
	if !got.Equal(date(2001, 5, 6)) {
		t.Errorf("Current() = %v after zero step, want 2001-05-06", got)
	}
}

func TestClock_AdvanceBy_NoDate(t *testing.T) {
	c := NewClock(time.Time{})

	err := c.AdvanceBy(5)
	if err == nil {
		t.Fatal("expected error for step without a date")
	}
	if !errors.Is(err, ErrNoDate) {
		t.Errorf("expected ErrNoDate, got: %v", err)
	}
}

func TestClock_AdvanceBy_Negative(t *testing.T) {
	c := NewClock(date(2001, 5, 1))

	err := c.AdvanceBy(-1)
	if err == nil {
		t.Fatal("expected error for negative step")
	}
	if !errors.Is(err, ErrInvalidSpan) {
		t.Errorf("expected ErrInvalidSpan, got: %v", err)
	}
}

func TestClock_StartDate(t *testing.T) {
	c := NewClock(date(2001, 5, 1))

	got, ok := c.Current()
	if !ok || !got.Equal(date(2001, 5, 1)) {
		t.Errorf("Current() = %v, %v; want configured start, true", got, ok)
	}

	// A start date makes relative steps legal before any date record
	if err := c.AdvanceBy(2); err != nil {
		t.Errorf("AdvanceBy with start date: %v", err)
	}
	got, _ = c.Current()
	if !got.Equal(date(2001, 5, 3)) {
		t.Errorf("Current() = %v, want 2001-05-03", got)
	}
}
