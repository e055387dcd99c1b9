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
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/AleutianAI/wellsched/services/schedule/wellpat"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedUniverse(wells ...string) Universe {
	return func(time.Time) []string { return wells }
}

func TestRegistry_DefineSortsAndDedupes(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("OP", []string{"OP2", "OP1", "OP2"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}

	got, err := r.Members("OP")
	if err != nil {
		t.Fatalf("Members returned error: %v", err)
	}
	want := []string{"OP1", "OP2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Members = %v, want %v", got, want)
	}
}

func TestRegistry_DefineExpandsWildcards(t *testing.T) {
	r := NewRegistry(fixedUniverse("OP1", "OP2", "WI1", "B_1H"))
	if err := r.Define("OP", []string{"OP*"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}

	got, _ := r.Members("OP")
	want := []string{"OP1", "OP2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Members = %v, want %v", got, want)
	}
}

func TestRegistry_DefineResolvesListReference(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("OP", []string{"OP1", "OP2"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define OP returned error: %v", err)
	}
	// A new list built from an existing one plus an extra well.
	if err := r.Define("ALL", []string{"*OP", "WI1"}, date(2001, 5, 1), 1); err != nil {
		t.Fatalf("Define ALL returned error: %v", err)
	}

	got, _ := r.Members("ALL")
	want := []string{"OP1", "OP2", "WI1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Members = %v, want %v", got, want)
	}

	// Membership was copied, not aliased: growing OP later leaves ALL alone.
	if err := r.Add("OP", []string{"OP3"}, date(2001, 6, 1), 2); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	got, _ = r.Members("ALL")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Members after growing OP = %v, want unchanged %v", got, want)
	}
}

func TestRegistry_DefineReplacesMembership(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("OP", []string{"OP1", "OP2"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	if err := r.Define("OP", []string{"OP3"}, date(2001, 6, 1), 1); err != nil {
		t.Fatalf("redefine returned error: %v", err)
	}

	got, _ := r.Members("OP")
	if want := []string{"OP3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Members = %v, want %v", got, want)
	}
}

func TestRegistry_AddAndRemove(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("OP", []string{"OP1"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	if err := r.Add("OP", []string{"OP3", "OP2"}, date(2001, 5, 1), 1); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, _ := r.Members("OP")
	if want := []string{"OP1", "OP2", "OP3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Members after Add = %v, want %v", got, want)
	}

	if err := r.Remove("OP", []string{"OP2", "GHOST"}, date(2001, 5, 1), 2); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	got, _ = r.Members("OP")
	if want := []string{"OP1", "OP3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Members after Remove = %v, want %v", got, want)
	}
}

func TestRegistry_MutateUnknownList(t *testing.T) {
	r := NewRegistry(nil)

	if err := r.Add("NOPE", []string{"OP1"}, date(2001, 5, 1), 0); !errors.Is(err, ErrUnknownList) {
		t.Errorf("Add error = %v, want ErrUnknownList", err)
	}
	if err := r.Remove("NOPE", []string{"OP1"}, date(2001, 5, 1), 0); !errors.Is(err, ErrUnknownList) {
		t.Errorf("Remove error = %v, want ErrUnknownList", err)
	}

	var merr MutationError
	err := r.Add("NOPE", []string{"OP1"}, date(2001, 5, 1), 0)
	if !errors.As(err, &merr) {
		t.Fatalf("Add error %v is not a MutationError", err)
	}
	if merr.List != "NOPE" || merr.Action != ActionAdd {
		t.Errorf("MutationError = %+v, want list NOPE action ADD", merr)
	}
}

func TestRegistry_MoveStripsOtherLists(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("A", []string{"OP1", "OP2"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define A returned error: %v", err)
	}
	if err := r.Define("B", []string{"OP3"}, date(2001, 5, 1), 1); err != nil {
		t.Fatalf("Define B returned error: %v", err)
	}

	// Move creates the target list when absent.
	if err := r.Move("C", []string{"OP1", "OP3"}, date(2001, 6, 1), 2); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}

	tests := []struct {
		list string
		want []string
	}{
		{list: "A", want: []string{"OP2"}},
		{list: "B", want: []string{}},
		{list: "C", want: []string{"OP1", "OP3"}},
	}
	for _, tt := range tests {
		got, err := r.Members(tt.list)
		if err != nil {
			t.Fatalf("Members(%s) returned error: %v", tt.list, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Members(%s) = %v, want %v", tt.list, got, tt.want)
		}
	}

	// Earlier membership stays queryable.
	got, err := r.MembersAsOf("A", date(2001, 5, 1))
	if err != nil {
		t.Fatalf("MembersAsOf returned error: %v", err)
	}
	if want := []string{"OP1", "OP2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("MembersAsOf(A, before move) = %v, want %v", got, want)
	}
}

func TestRegistry_MembersAsOf(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("OP", []string{"OP1"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}
	if err := r.Add("OP", []string{"OP2"}, date(2001, 8, 1), 1); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, err := r.MembersAsOf("OP", date(2001, 6, 15))
	if err != nil {
		t.Fatalf("MembersAsOf returned error: %v", err)
	}
	if want := []string{"OP1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("MembersAsOf mid-history = %v, want %v", got, want)
	}

	if _, err := r.MembersAsOf("OP", date(2001, 1, 1)); !errors.Is(err, ErrUnknownList) {
		t.Errorf("MembersAsOf before definition error = %v, want ErrUnknownList", err)
	}
}

func TestRegistry_ResolveMembers(t *testing.T) {
	r := NewRegistry(fixedUniverse("OP1", "OP2", "WI1"))
	if err := r.Define("INJ", []string{"WI1"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define returned error: %v", err)
	}

	tests := []struct {
		name     string
		operands []string
		want     []string
		wantErr  error
	}{
		{
			name:     "concrete names kept verbatim",
			operands: []string{"OP9"},
			want:     []string{"OP9"},
		},
		{
			name:     "wildcard expands against universe",
			operands: []string{"OP*"},
			want:     []string{"OP1", "OP2"},
		},
		{
			name:     "list reference resolves to members",
			operands: []string{"*INJ", "OP1"},
			want:     []string{"WI1", "OP1"},
		},
		{
			name:     "duplicates collapse in first-occurrence order",
			operands: []string{"OP2", "OP*"},
			want:     []string{"OP2", "OP1"},
		},
		{
			name:     "escaped leading wildcard is a pattern",
			operands: []string{"\\*P1"},
			want:     []string{"OP1"},
		},
		{
			name:     "unknown list reference",
			operands: []string{"*NOPE"},
			wantErr:  ErrUnknownList,
		},
		{
			name:     "unescaped leading question mark",
			operands: []string{"?P1"},
			wantErr:  wellpat.ErrLeadingWildcard,
		},
		{
			name:     "empty operand",
			operands: []string{""},
			wantErr:  wellpat.ErrEmptyTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveMembers(tt.operands, date(2001, 5, 1))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveMembers error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveMembers returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveMembers = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_StatesByDate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Define("A", []string{"OP1"}, date(2001, 5, 1), 0); err != nil {
		t.Fatalf("Define A returned error: %v", err)
	}
	if err := r.Define("B", []string{"OP2"}, date(2001, 6, 1), 1); err != nil {
		t.Fatalf("Define B returned error: %v", err)
	}
	if err := r.Add("A", []string{"OP3"}, date(2001, 6, 1), 2); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got := r.StatesByDate()
	want := []DateState{
		{
			Date:  date(2001, 5, 1),
			Lists: []ListState{{Name: "A", Members: []string{"OP1"}}},
		},
		{
			Date: date(2001, 6, 1),
			Lists: []ListState{
				{Name: "A", Members: []string{"OP1", "OP3"}},
				{Name: "B", Members: []string{"OP2"}},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StatesByDate = %+v, want %+v", got, want)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(nil)
	for i, name := range []string{"C", "A", "B"} {
		if err := r.Define(name, nil, date(2001, 5, 1), i); err != nil {
			t.Fatalf("Define %s returned error: %v", name, err)
		}
	}
	if got, want := r.Names(), []string{"C", "A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want first-defined order %v", got, want)
	}
	if r.Count() != 3 {
		t.Errorf("Count = %d, want 3", r.Count())
	}
}
