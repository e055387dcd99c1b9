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
	"time"
)

// Clock tracks the current date of a schedule run.
//
// Dates are normalized to midnight UTC. The clock only moves forward:
// revisiting the current date is a no-op, moving backwards is an error.
type Clock struct {
	current time.Time
	set     bool
}

// NewClock returns a clock. A zero start leaves the clock unset until the
// first absolute date record arrives.
func NewClock(start time.Time) *Clock {
	c := &Clock{}
	if !start.IsZero() {
		c.current = dayOf(start)
		c.set = true
	}
	return c
}

// AdvanceTo moves the clock to an absolute date. Advancing to the current
// date is allowed; an earlier date fails with ErrDateOrder.
func (c *Clock) AdvanceTo(date time.Time) error {
	date = dayOf(date)
	if c.set && date.Before(c.current) {
		return fmt.Errorf("%w: %s after %s",
			ErrDateOrder, date.Format(time.DateOnly), c.current.Format(time.DateOnly))
	}
	c.current = date
	c.set = true
	return nil
}

// AdvanceBy moves the clock forward by whole days. It fails with ErrNoDate
// while no date is established and with ErrInvalidSpan for negative steps.
func (c *Clock) AdvanceBy(days int) error {
	if !c.set {
		return fmt.Errorf("%w: relative step of %d days", ErrNoDate, days)
	}
	if days < 0 {
		return fmt.Errorf("%w: negative step %d", ErrInvalidSpan, days)
	}
	c.current = c.current.AddDate(0, 0, days)
	return nil
}

// Current returns the clock date; ok is false while no date is set.
func (c *Clock) Current() (time.Time, bool) {
	return c.current, c.set
}

// dayOf normalizes a timestamp to midnight UTC of its calendar day.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
