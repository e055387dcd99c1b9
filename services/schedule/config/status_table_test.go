// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

// TestGetStatusTable_Singleton tests that the table is loaded once.
func TestGetStatusTable_Singleton(t *testing.T) {
	ResetStatusTable()
	defer ResetStatusTable()

	ctx := context.Background()

	tbl1, err := GetStatusTable(ctx)
	if err != nil {
		t.Fatalf("GetStatusTable failed: %v", err)
	}
	if tbl1 == nil {
		t.Fatal("GetStatusTable returned nil")
	}

	tbl2, err := GetStatusTable(ctx)
	if err != nil {
		t.Fatalf("GetStatusTable second call failed: %v", err)
	}
	if tbl1 != tbl2 {
		t.Error("GetStatusTable should return same instance (singleton)")
	}
}

// TestGetStatusTable_NilContext tests that nil context returns error.
func TestGetStatusTable_NilContext(t *testing.T) {
	ResetStatusTable()
	defer ResetStatusTable()

	_, err := GetStatusTable(nil)
	if err == nil {
		t.Error("GetStatusTable(nil) should return error")
	}
}

// TestStatusTable_ClassifyDefaults tests the embedded default spellings.
func TestStatusTable_ClassifyDefaults(t *testing.T) {
	ResetStatusTable()
	defer ResetStatusTable()

	ctx := context.Background()
	tbl, err := GetStatusTable(ctx)
	if err != nil {
		t.Fatalf("GetStatusTable failed: %v", err)
	}

	tests := []struct {
		spelling  string
		wantClass Class
		wantKnown bool
	}{
		{spelling: "OPEN", wantClass: ClassOpen, wantKnown: true},
		{spelling: "SHUT", wantClass: ClassClosed, wantKnown: true},
		{spelling: "STOP", wantClass: ClassClosed, wantKnown: true},
		{spelling: "AUTO", wantClass: ClassOpen, wantKnown: true},
		{spelling: "POPN", wantClass: ClassOpen, wantKnown: true},
		{spelling: "open", wantClass: ClassOpen, wantKnown: true},
		{spelling: " shut ", wantClass: ClassClosed, wantKnown: true},
		{spelling: "FOOBAR", wantKnown: false},
		{spelling: "", wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.spelling, func(t *testing.T) {
			class, known := tbl.Classify(tt.spelling)
			if known != tt.wantKnown {
				t.Fatalf("Classify(%q) known = %v, want %v", tt.spelling, known, tt.wantKnown)
			}
			if known && class != tt.wantClass {
				t.Errorf("Classify(%q) = %v, want %v", tt.spelling, class, tt.wantClass)
			}
		})
	}
}

// TestStatusTable_Spellings tests the sorted spelling listing.
func TestStatusTable_Spellings(t *testing.T) {
	ResetStatusTable()
	defer ResetStatusTable()

	tbl, err := GetStatusTable(context.Background())
	if err != nil {
		t.Fatalf("GetStatusTable failed: %v", err)
	}

	want := []string{"AUTO", "OPEN", "POPN", "SHUT", "STOP"}
	if got := tbl.Spellings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Spellings = %v, want %v", got, want)
	}
	if tbl.Count() != len(want) {
		t.Errorf("Count = %d, want %d", tbl.Count(), len(want))
	}
}

// TestStatusTable_LoadedAt tests timestamp.
func TestStatusTable_LoadedAt(t *testing.T) {
	ResetStatusTable()
	defer ResetStatusTable()

	tbl, err := GetStatusTable(context.Background())
	if err != nil {
		t.Fatalf("GetStatusTable failed: %v", err)
	}
	if tbl.LoadedAt() == 0 {
		t.Error("LoadedAt should be non-zero")
	}
}

// TestParseStatusTableYAML_InvalidYAML tests error handling for invalid YAML.
func TestParseStatusTableYAML_InvalidYAML(t *testing.T) {
	ctx := context.Background()

	invalidYAML := []byte("this is not valid yaml: [")
	_, err := parseStatusTableYAML(ctx, invalidYAML)
	if err == nil {
		t.Error("parseStatusTableYAML should fail for invalid YAML")
	}
}

// TestParseStatusTableYAML_Validation tests entry validation.
func TestParseStatusTableYAML_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty spelling",
			yaml: `
statuses:
  - spelling: ""
    class: open
`,
		},
		{
			name: "unknown class",
			yaml: `
statuses:
  - spelling: OPEN
    class: flowing
`,
		},
		{
			name: "duplicate spelling",
			yaml: `
statuses:
  - spelling: OPEN
    class: open
  - spelling: open
    class: closed
`,
		},
		{
			name: "empty table",
			yaml: `statuses: []`,
		},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseStatusTableYAML(ctx, []byte(tt.yaml)); err == nil {
				t.Errorf("parseStatusTableYAML should fail for %s", tt.name)
			}
		})
	}
}

// TestParseStatusTableYAML_TooManySpellings tests the spelling count limit.
func TestParseStatusTableYAML_TooManySpellings(t *testing.T) {
	ctx := context.Background()

	data := "statuses:\n"
	for i := 0; i <= MaxSpellings; i++ {
		data += fmt.Sprintf("  - spelling: S%02d\n    class: open\n", i)
	}

	if _, err := parseStatusTableYAML(ctx, []byte(data)); err == nil {
		t.Error("parseStatusTableYAML should fail when exceeding MaxSpellings")
	}
}

// TestMetricRecording tests that metric helpers do not panic.
func TestMetricRecording(t *testing.T) {
	RecordUnknownSpelling()
}

// BenchmarkClassify benchmarks spelling classification.
func BenchmarkClassify(b *testing.B) {
	ResetStatusTable()
	defer ResetStatusTable()

	tbl, err := GetStatusTable(context.Background())
	if err != nil {
		b.Fatalf("GetStatusTable failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.Classify("shut")
	}
}
