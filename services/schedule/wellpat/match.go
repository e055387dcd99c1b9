// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wellpat matches well names against schedule wildcard templates.
//
// Templates use shell-style syntax:
//   - * matches any sequence of characters (including none)
//   - ? matches exactly one character
//
// Matching is anchored at both ends: the whole name must match, not a
// substring. A template whose first character is an unescaped wildcard is
// rejected, because a leading * in the schedule grammar denotes a list
// reference, not a pattern. Prefixing the template with a single backslash
// escapes that rule and allows a genuinely-leading wildcard ("\*P1" matches
// "OP1").
package wellpat

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for template compilation.
var (
	// ErrLeadingWildcard is returned for templates starting with an
	// unescaped wildcard character.
	ErrLeadingWildcard = errors.New("well template must not start with a wildcard character")

	// ErrEmptyTemplate is returned for empty templates.
	ErrEmptyTemplate = errors.New("well template is empty")
)

// HasWildcard reports whether the operand contains any wildcard character.
//
// Callers use this to distinguish a concrete well name from a template that
// needs expansion against the well-name universe.
func HasWildcard(operand string) bool {
	return strings.ContainsAny(operand, "*?")
}

// Pattern is a compiled well-name template.
//
// Thread Safety: Pattern is safe for concurrent use after compilation.
type Pattern struct {
	template string
}

// Compile validates a template and returns a Pattern.
//
// A single leading backslash is consumed as the escape marker. After
// unescaping, a template starting with * or ? fails with ErrLeadingWildcard.
func Compile(template string) (*Pattern, error) {
	if template == "" {
		return nil, ErrEmptyTemplate
	}

	escaped := false
	if template[0] == '\\' {
		template = template[1:]
		escaped = true
		if template == "" {
			return nil, fmt.Errorf("%w: lone escape character", ErrEmptyTemplate)
		}
	}

	if !escaped && (template[0] == '*' || template[0] == '?') {
		return nil, fmt.Errorf("%w: %q", ErrLeadingWildcard, template)
	}

	return &Pattern{template: template}, nil
}

// String returns the unescaped template text.
func (p *Pattern) String() string {
	return p.template
}

// Match reports whether name matches the whole template.
func (p *Pattern) Match(name string) bool {
	return matchTemplate(p.template, name)
}

// Filter returns the subset of names matching the template, preserving the
// input order.
func (p *Pattern) Filter(names []string) []string {
	matched := make([]string, 0, len(names))
	for _, name := range names {
		if p.Match(name) {
			matched = append(matched, name)
		}
	}
	return matched
}

// matchTemplate matches a name against a template.
//
// The template is split on *: the first part anchors at the start, the last
// part anchors at the end, and middle parts must appear in order between
// them. Each part may contain ? holes.
func matchTemplate(template, name string) bool {
	parts := strings.Split(template, "*")
	if len(parts) == 1 {
		// No * present, exact-length match with ? holes.
		return matchSegment(template, name)
	}

	// Leading part must anchor at the start.
	first := parts[0]
	if len(name) < len(first) || !matchSegment(first, name[:len(first)]) {
		return false
	}
	idx := len(first)

	// Middle parts must appear in order. Leftmost placement leaves the
	// most room for the parts that follow.
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		next := indexSegment(part, name, idx)
		if next < 0 {
			return false
		}
		idx = next + len(part)
	}

	// Trailing part must anchor at the end without overlapping what has
	// already been consumed.
	last := parts[len(parts)-1]
	if last == "" {
		return true
	}
	if len(name)-idx < len(last) {
		return false
	}
	return matchSegment(last, name[len(name)-len(last):])
}

// matchSegment reports whether s matches a wildcard-free segment of the same
// length, where ? matches any single character.
func matchSegment(segment, s string) bool {
	if len(segment) != len(s) {
		return false
	}
	for i := 0; i < len(segment); i++ {
		if segment[i] != '?' && segment[i] != s[i] {
			return false
		}
	}
	return true
}

// indexSegment returns the first index at or after from where segment
// matches inside s, or -1.
func indexSegment(segment, s string, from int) int {
	for i := from; i+len(segment) <= len(s); i++ {
		if matchSegment(segment, s[i:i+len(segment)]) {
			return i
		}
	}
	return -1
}
