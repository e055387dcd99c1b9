// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wellist maintains named well lists across a schedule run.
//
// A well list is a named, alphabetically sorted set of well names that
// open/shut directives can address as a group. Lists are mutated by dated
// actions (define, add, remove, move) and every mutation is kept, so the
// membership of a list can be queried as of any date of the run.
//
// # Design Principles
//
// Mutation operands are expanded eagerly: wildcards are resolved against the
// well-name universe and list references against the referenced list's
// membership at the time the mutation is applied. Stored members are always
// concrete well names.
//
// # Thread Safety
//
// Registry is NOT safe for concurrent modification. The schedule session
// owns a registry per run and folds events into it sequentially.
package wellist

import (
	"errors"
	"fmt"
)

// Sentinel errors for list operations.
var (
	// ErrUnknownList is returned when a mutation or query references a
	// list that does not exist at the relevant date.
	ErrUnknownList = errors.New("well list not defined")

	// ErrEmptyName is returned when a mutation carries no list name.
	ErrEmptyName = errors.New("well list name is empty")
)

// MutationError decorates a failed list mutation with the list name and the
// action that failed.
type MutationError struct {
	// List is the name of the list being mutated.
	List string `json:"list"`

	// Action is the mutation verb that failed.
	Action Action `json:"action"`

	// Err is the underlying error.
	Err error `json:"error"`
}

// Error implements the error interface.
func (e MutationError) Error() string {
	return fmt.Sprintf("list %s %s: %v", e.Action, e.List, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e MutationError) Unwrap() error {
	return e.Err
}
