// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package format

import (
	"time"

	"github.com/AleutianAI/wellsched/services/schedule"
)

// RowSet is the flat projection of a schedule result.
type RowSet struct {
	// Version is the row schema version.
	Version string `json:"version"`

	// RunID identifies the run that produced the rows.
	RunID string `json:"run_id,omitempty"`

	// Connections holds one row per connection per snapshot.
	Connections []ConnectionRow `json:"connections"`

	// Wells holds one row per well per snapshot with the standalone flag.
	Wells []WellFlagRow `json:"wells"`

	// Lists holds one row per named list per date on which any list changed.
	Lists []ListRow `json:"lists,omitempty"`
}

// ConnectionRow is one connection's state inside one snapshot.
type ConnectionRow struct {
	// Date is the snapshot date as YYYY-MM-DD, empty when the run never
	// saw a date record.
	Date string `json:"date,omitempty"`

	// Well is the well name.
	Well string `json:"well"`

	// I, J, K are the grid cell coordinates.
	I int `json:"i"`
	J int `json:"j"`
	K int `json:"k"`

	// Status is OPEN or SHUT.
	Status string `json:"status"`

	// Lump is the lump number covering the cell at the snapshot date,
	// zero for none.
	Lump int `json:"lump,omitempty"`

	// Effective is the date the row's current status took effect.
	Effective string `json:"effective,omitempty"`

	// Seq is the stream position of the record that set the status.
	Seq int `json:"seq"`
}

// WellFlagRow is one well's standalone flag inside one snapshot.
type WellFlagRow struct {
	// Date is the snapshot date as YYYY-MM-DD.
	Date string `json:"date,omitempty"`

	// Well is the well name.
	Well string `json:"well"`

	// Flag is the spelling of the last well-level directive, OPEN by
	// default.
	Flag string `json:"flag"`

	// Effective is the date the flag was last set, empty if never.
	Effective string `json:"effective,omitempty"`

	// Seq is the stream position of the directive that set the flag.
	Seq int `json:"seq"`
}

// ListRow is the membership of one named list at the end of one date.
type ListRow struct {
	// Date is the state date as YYYY-MM-DD.
	Date string `json:"date,omitempty"`

	// List is the list name.
	List string `json:"list"`

	// Wells are the member well names, sorted.
	Wells []string `json:"wells"`
}

// Flatten projects a schedule result into flat rows.
//
// Connection and well rows appear snapshot by snapshot in emission order;
// list rows restate every defined list per mutation date.
func Flatten(res *schedule.Result) *RowSet {
	rows := &RowSet{Version: FormatVersion}
	if res == nil {
		return rows
	}
	rows.RunID = res.RunID

	for _, snap := range res.Snapshots {
		date := renderDate(snap.Date)
		for _, ws := range snap.Wells {
			rows.Wells = append(rows.Wells, WellFlagRow{
				Date:      date,
				Well:      ws.Well,
				Flag:      string(ws.Status),
				Effective: renderDate(ws.Date),
				Seq:       ws.Seq,
			})
		}
		for _, c := range snap.Connections {
			rows.Connections = append(rows.Connections, ConnectionRow{
				Date:      date,
				Well:      c.Well,
				I:         c.I,
				J:         c.J,
				K:         c.K,
				Status:    string(c.Status),
				Lump:      c.Lump,
				Effective: renderDate(c.Date),
				Seq:       c.Seq,
			})
		}
	}

	if res.Lists != nil {
		for _, ds := range res.Lists.StatesByDate() {
			date := renderDate(ds.Date)
			for _, ls := range ds.Lists {
				rows.Lists = append(rows.Lists, ListRow{
					Date:  date,
					List:  ls.Name,
					Wells: ls.Members,
				})
			}
		}
	}

	return rows
}

// renderDate formats a date as YYYY-MM-DD; the zero time renders empty.
func renderDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
