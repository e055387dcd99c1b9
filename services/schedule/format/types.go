// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package format renders schedule results for external consumers.
//
// Results are projected into flat row sets (one row per connection per
// snapshot, plus well-flag rows) and serialized by a Formatter. The
// package never touches the filesystem; callers pick the writer.
package format

import (
	"fmt"
	"io"
)

// FormatType represents the type of output format.
type FormatType string

const (
	// FormatJSON is indented JSON output (default).
	FormatJSON FormatType = "json"

	// FormatCompact is single-line JSON output.
	FormatCompact FormatType = "compact"
)

// FormatVersion is the current version of the row schema.
const FormatVersion = "1"

// Formatter serializes a projected row set.
type Formatter interface {
	// Format converts the row set to a formatted string.
	Format(rows *RowSet) (string, error)

	// Name returns the format name.
	Name() FormatType

	// IsReversible returns whether the output can be parsed back.
	IsReversible() bool

	// SupportsStreaming returns whether the format supports streaming output.
	SupportsStreaming() bool

	// FormatStreaming writes formatted output to a writer (if supported).
	FormatStreaming(rows *RowSet, w io.Writer) error
}

// FormatMetadata contains metadata about the formatted output.
type FormatMetadata struct {
	// Type is the format type.
	Type FormatType `json:"type"`

	// Version is the row schema version.
	Version string `json:"version"`

	// Reversible indicates if the output can be parsed back.
	Reversible bool `json:"reversible"`
}

// Registry maps format types to formatters.
type Registry struct {
	formatters map[FormatType]Formatter
}

// NewRegistry creates a registry with all built-in formatters.
func NewRegistry() *Registry {
	return &Registry{
		formatters: map[FormatType]Formatter{
			FormatJSON:    NewJSONFormatter(),
			FormatCompact: NewJSONFormatterCompact(),
		},
	}
}

// GetFormatter returns the formatter for a format type.
func (r *Registry) GetFormatter(ft FormatType) (Formatter, error) {
	f, ok := r.formatters[ft]
	if !ok {
		return nil, fmt.Errorf("unknown format type %q", ft)
	}
	return f, nil
}

// GetMetadata returns metadata for a format type.
func (r *Registry) GetMetadata(ft FormatType) (FormatMetadata, error) {
	f, err := r.GetFormatter(ft)
	if err != nil {
		return FormatMetadata{}, err
	}
	return FormatMetadata{
		Type:       f.Name(),
		Version:    FormatVersion,
		Reversible: f.IsReversible(),
	}, nil
}

// DefaultRegistry is the package-level registry.
var DefaultRegistry = NewRegistry()

// Format renders a row set with the named format from the default registry.
func Format(rows *RowSet, ft FormatType) (string, error) {
	f, err := DefaultRegistry.GetFormatter(ft)
	if err != nil {
		return "", err
	}
	return f.Format(rows)
}
