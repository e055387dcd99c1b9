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

import "fmt"

// Spanned is a record carrying a closed integer range that can be rewritten
// to cover a narrower part of that range. WithSpan must return a copy; Unroll
// never mutates its input.
type Spanned[T any] interface {
	// Span returns the inclusive range bounds.
	Span() (start, end int)

	// WithSpan returns a copy of the record covering only [start, end].
	WithSpan(start, end int) T
}

// Unroll expands a ranged record into one record per integer in its span,
// ascending. A record whose span is a single value unrolls to one copy of
// itself. An inverted span fails with ErrInvalidSpan.
func Unroll[T Spanned[T]](rec T) ([]T, error) {
	start, end := rec.Span()
	if start > end {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidSpan, start, end)
	}
	out := make([]T, 0, end-start+1)
	for v := start; v <= end; v++ {
		out = append(out, rec.WithSpan(v, v))
	}
	return out, nil
}
