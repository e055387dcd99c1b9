// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schedule folds a date-ordered stream of well schedule records
// into full connection-status snapshots.
//
// A Session owns the run state: a forward-only clock, the connection
// table, the named well list and lump registries, and the resolver that
// applies open/shut directives. Folding a record stream yields one
// snapshot per date on which anything changed, plus the final registries.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/wellsched/services/schedule/config"
	"github.com/AleutianAI/wellsched/services/schedule/conntab"
	"github.com/AleutianAI/wellsched/services/schedule/lump"
	"github.com/AleutianAI/wellsched/services/schedule/wellist"
)

// Option is a functional option for configuring a Session.
type Option func(*Session)

// Session folds one schedule stream into snapshots.
//
// A session is single-use: create it, call Run once, read the result.
//
// Thread Safety: NOT safe for concurrent use.
type Session struct {
	clock    *Clock
	table    *conntab.Table
	lists    *wellist.Registry
	lumps    *lump.Registry
	acc      *Accumulator
	status   *config.StatusTable
	resolver *Resolver
	limits   Limits
	logger   *slog.Logger
	onError  func(error) error
	universe wellist.Universe

	heads      map[string]wellHead
	batchWells []string
	directives int
}

// wellHead is a declared well's head cell column and row.
type wellHead struct {
	i, j int
}

// NewSession creates a session with the given options.
//
// Default configuration:
//   - clock unset until the first absolute date record
//   - limits: DefaultLimits
//   - logger: slog.Default()
//   - status table: loaded via config.GetStatusTable on Run
//   - wildcard universe: wells known to the session itself
func NewSession(opts ...Option) *Session {
	s := &Session{
		clock:  NewClock(time.Time{}),
		table:  conntab.NewTable(),
		lumps:  lump.NewRegistry(),
		acc:    newAccumulator(),
		limits: DefaultLimits(),
		logger: slog.Default(),
		heads:  make(map[string]wellHead),
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	if s.universe == nil {
		s.universe = s.knownWells
	}
	s.lists = wellist.NewRegistry(s.universe)

	return s
}

// WithStartDate sets the date the clock starts at. Without it the clock is
// unset until the first absolute date record.
func WithStartDate(start time.Time) Option {
	return func(s *Session) {
		s.clock = NewClock(start)
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLimits sets the run size limits.
func WithLimits(limits Limits) Option {
	return func(s *Session) {
		s.limits = limits
	}
}

// WithStatusTable sets the status spelling table, bypassing the embedded
// default.
func WithStatusTable(table *config.StatusTable) Option {
	return func(s *Session) {
		s.status = table
	}
}

// WithErrorPolicy sets the record error hook. The hook receives each record
// error; returning nil skips the record and the fold continues, returning
// an error (the same or a wrapped one) aborts the run with it.
func WithErrorPolicy(policy func(error) error) Option {
	return func(s *Session) {
		s.onError = policy
	}
}

// WithUniverse overrides the well-name universe used to expand wildcard
// operands in list mutations.
func WithUniverse(universe wellist.Universe) Option {
	return func(s *Session) {
		s.universe = universe
	}
}

// Run folds the record stream and returns the emitted snapshots together
// with the final list and lump registries.
//
// Description:
//
//	Records sharing a date are batched: list and lump mutations apply
//	first, then well declarations, connection definitions, and
//	directives in stream order. Each date advance flushes a snapshot of
//	the previous date when anything changed, and a final flush runs at
//	end of stream.
//
// Inputs:
//
//	ctx - Context for cancellation and tracing. Must not be nil.
//	events - The schedule records in stream order.
//
// Outputs:
//
//	*Result - The run outcome. On error it carries everything resolved
//	up to the failing record; on cancellation likewise.
//	error - Non-nil if the fold aborted.
func (s *Session) Run(ctx context.Context, events []Event) (*Result, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	runID := uuid.NewString()[:12]
	ctx, span := startRunSpan(ctx, runID, len(events))
	defer span.End()

	start := time.Now()
	s.logger.Info("schedule run started",
		slog.String("run_id", runID),
		slog.Int("events", len(events)))

	if err := s.prepare(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run setup failed")
		return nil, err
	}

	if s.limits.MaxEvents > 0 && len(events) > s.limits.MaxEvents {
		err := fmt.Errorf("%w: %d records (max %d)", ErrLimit, len(events), s.limits.MaxEvents)
		span.RecordError(err)
		span.SetStatus(codes.Error, "limit exceeded")
		return nil, err
	}

	err := s.fold(ctx, events)

	result := s.buildResult(runID, len(events), time.Since(start))
	recordRunMetrics(ctx, time.Since(start), len(result.Snapshots), err == nil)
	setRunSpanResult(span, len(result.Snapshots), err == nil)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schedule fold failed")
		s.logger.Error("schedule run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		return result, err
	}

	span.SetStatus(codes.Ok, "")
	s.logger.Info("schedule run completed",
		slog.String("run_id", runID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("snapshots", len(result.Snapshots)),
		slog.Int("wells", s.table.CountWells()),
		slog.Int("connections", s.table.CountConnections()))
	return result, nil
}

// prepare validates limits and wires the resolver.
func (s *Session) prepare(ctx context.Context) error {
	if err := initMetrics(); err != nil {
		s.logger.Warn("metrics init failed", slog.String("error", err.Error()))
	}
	if err := s.limits.Validate(); err != nil {
		return err
	}
	if s.status == nil {
		tbl, err := config.GetStatusTable(ctx)
		if err != nil {
			return fmt.Errorf("loading status spelling table: %w", err)
		}
		s.status = tbl
	}
	s.resolver = NewResolver(s.table, s.lists, s.lumps, s.status, s.logger)
	return nil
}

// numbered pairs a record with its stream position.
type numbered struct {
	ev  Event
	seq int
}

// fold walks the stream, batching records between date advances.
func (s *Session) fold(ctx context.Context, events []Event) error {
	var batch []numbered

	for seq, ev := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		recordEventMetric(ctx, ev.Kind())

		switch ev := ev.(type) {
		case DateEvent:
			if err := s.applyBatch(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
			if err := s.emitPending(); err != nil {
				return err
			}
			if err := s.clock.AdvanceTo(ev.Date); err != nil {
				if err = s.noteOrSkip(seq, ev.Kind(), err); err != nil {
					return err
				}
			}
		case StepEvent:
			if err := s.applyBatch(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
			if err := s.emitPending(); err != nil {
				return err
			}
			if err := s.advanceBySteps(ev); err != nil {
				if err = s.noteOrSkip(seq, ev.Kind(), err); err != nil {
					return err
				}
			}
		default:
			batch = append(batch, numbered{ev: ev, seq: seq})
		}
	}

	if err := s.applyBatch(ctx, batch); err != nil {
		return err
	}
	return s.emitPending()
}

// applyBatch folds the records collected between two date advances.
//
// Two passes: list and lump mutations first, then everything else in
// stream order. A directive may therefore reference a list or lump defined
// later on the same date, because dated declarations are looked up by date
// rather than stream position.
func (s *Session) applyBatch(ctx context.Context, batch []numbered) error {
	if len(batch) == 0 {
		return nil
	}
	date, _ := s.clock.Current()

	s.announceBatchWells(batch)
	defer func() { s.batchWells = s.batchWells[:0] }()

	for _, n := range batch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var err error
		switch ev := n.ev.(type) {
		case ListEvent:
			err = s.applyList(ev, date, n.seq)
		case LumpEvent:
			err = s.applyLump(ev, date, n.seq)
		default:
			continue
		}
		if err != nil {
			if err = s.noteOrSkip(n.seq, n.ev.Kind(), err); err != nil {
				return err
			}
		}
	}

	for _, n := range batch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var err error
		switch ev := n.ev.(type) {
		case WellEvent:
			err = s.applyWell(ev)
		case ConnEvent:
			err = s.applyConn(ev, date, n.seq)
		case DirectiveEvent:
			err = s.applyDirective(ctx, ev, date, n.seq)
		case ListEvent, LumpEvent:
			continue
		default:
			err = fmt.Errorf("%w: unsupported record %T", ErrInvalidEvent, n.ev)
		}
		if err != nil {
			if err = s.noteOrSkip(n.seq, n.ev.Kind(), err); err != nil {
				return err
			}
		}
	}

	return nil
}

// announceBatchWells collects the wells named by the batch so wildcard
// expansion in pass one can see wells that only gain connections in pass
// two of the same date.
func (s *Session) announceBatchWells(batch []numbered) {
	seen := make(map[string]bool, len(batch))
	for _, n := range batch {
		var name string
		switch ev := n.ev.(type) {
		case WellEvent:
			name = ev.Well
		case ConnEvent:
			name = ev.Well
		default:
			continue
		}
		if name != "" && !seen[name] {
			seen[name] = true
			s.batchWells = append(s.batchWells, name)
		}
	}
}

// knownWells is the default wildcard universe: wells with connections plus
// wells announced by the batch being folded.
func (s *Session) knownWells(time.Time) []string {
	names := s.table.Wells()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range s.batchWells {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// applyWell records a well's head cell. Re-declaring replaces the head.
func (s *Session) applyWell(ev WellEvent) error {
	if ev.Well == "" {
		return fmt.Errorf("%w: well declaration has no name", ErrInvalidEvent)
	}
	if ev.HeadI <= 0 || ev.HeadJ <= 0 {
		return fmt.Errorf("%w: well %q head (%d, %d)", ErrInvalidEvent, ev.Well, ev.HeadI, ev.HeadJ)
	}
	s.heads[ev.Well] = wellHead{i: ev.HeadI, j: ev.HeadJ}
	return nil
}

// applyConn unrolls a connection definition over its layer span and stores
// one connection per layer. Defaulted I/J inherit the well head.
func (s *Session) applyConn(ev ConnEvent, date time.Time, seq int) error {
	if ev.Well == "" {
		return fmt.Errorf("%w: connection has no well name", ErrInvalidEvent)
	}

	i, j := ev.I, ev.J
	if i <= 0 || j <= 0 {
		head, ok := s.heads[ev.Well]
		if !ok {
			return fmt.Errorf("%w: well %q", ErrNoWellHead, ev.Well)
		}
		if i <= 0 {
			i = head.i
		}
		if j <= 0 {
			j = head.j
		}
	}
	if ev.K1 <= 0 || ev.K2 <= 0 {
		return fmt.Errorf("%w: well %q layers %d..%d", ErrInvalidEvent, ev.Well, ev.K1, ev.K2)
	}

	rows, err := Unroll(ev)
	if err != nil {
		return fmt.Errorf("well %q: %w", ev.Well, err)
	}

	st := s.initialStatus(ev.Status)
	for _, row := range rows {
		s.table.Upsert(conntab.Connection{
			Well:   ev.Well,
			I:      i,
			J:      j,
			K:      row.K1,
			Status: st,
			Date:   date,
			Seq:    seq,
		})
	}
	s.acc.MarkDirty()

	if s.limits.MaxWells > 0 && s.table.CountWells() > s.limits.MaxWells {
		return fmt.Errorf("%w: %d wells (max %d)", ErrLimit, s.table.CountWells(), s.limits.MaxWells)
	}
	if s.limits.MaxConnsPerWell > 0 && s.table.ConnectionsOf(ev.Well) > s.limits.MaxConnsPerWell {
		return fmt.Errorf("%w: well %q has %d connections (max %d)",
			ErrLimit, ev.Well, s.table.ConnectionsOf(ev.Well), s.limits.MaxConnsPerWell)
	}
	return nil
}

// initialStatus normalizes a connection definition's status spelling.
// Empty means open. Unknown spellings are logged and stored shut.
func (s *Session) initialStatus(spelling string) conntab.Status {
	if spelling == "" {
		return conntab.StatusOpen
	}
	class, ok := s.status.Classify(spelling)
	if !ok {
		s.logger.Warn("unknown connection status spelling, storing shut",
			slog.String("spelling", spelling))
		config.RecordUnknownSpelling()
		return conntab.StatusShut
	}
	if class == config.ClassClosed {
		return conntab.StatusShut
	}
	return conntab.StatusOpen
}

// applyList dispatches a list mutation to the registry.
func (s *Session) applyList(ev ListEvent, date time.Time, seq int) error {
	name := strings.TrimPrefix(ev.Name, "*")
	if name == "" {
		return fmt.Errorf("%w: list mutation has no name", ErrInvalidEvent)
	}
	if s.limits.MaxListOperands > 0 && len(ev.Operands) > s.limits.MaxListOperands {
		return fmt.Errorf("%w: %d operands (max %d)", ErrLimit, len(ev.Operands), s.limits.MaxListOperands)
	}

	var err error
	switch ev.Action {
	case wellist.ActionDefine:
		err = s.lists.Define(name, ev.Operands, date, seq)
	case wellist.ActionAdd:
		err = s.lists.Add(name, ev.Operands, date, seq)
	case wellist.ActionRemove:
		err = s.lists.Remove(name, ev.Operands, date, seq)
	case wellist.ActionMove:
		err = s.lists.Move(name, ev.Operands, date, seq)
	default:
		err = fmt.Errorf("%w: unknown list action %q", ErrInvalidEvent, ev.Action)
	}
	if err != nil {
		return err
	}
	s.acc.MarkDirty()
	return nil
}

// applyLump unrolls a lump declaration's layer span into atomic cells and
// declares them. A fully defaulted span stays a single all-layers sentinel
// cell; a half-defaulted span is rejected.
func (s *Session) applyLump(ev LumpEvent, date time.Time, seq int) error {
	var cells []lump.CellRange
	switch {
	case ev.K1 == 0 && ev.K2 == 0:
		cells = []lump.CellRange{{I: ev.I, J: ev.J}}
	case ev.K1 == 0 || ev.K2 == 0:
		return fmt.Errorf("%w: half-defaulted span %d..%d for well %q",
			lump.ErrInvalidSpan, ev.K1, ev.K2, ev.Well)
	default:
		rows, err := Unroll(ev)
		if err != nil {
			return fmt.Errorf("well %q: %w", ev.Well, err)
		}
		cells = make([]lump.CellRange, 0, len(rows))
		for _, row := range rows {
			cells = append(cells, lump.CellRange{I: ev.I, J: ev.J, K1: row.K1, K2: row.K2})
		}
	}

	if err := s.lumps.Declare(ev.Well, ev.Number, cells, date, seq); err != nil {
		return err
	}
	s.acc.MarkDirty()
	return nil
}

// applyDirective resolves one open/shut directive.
func (s *Session) applyDirective(ctx context.Context, ev DirectiveEvent, date time.Time, seq int) error {
	eff, err := s.resolver.Apply(ev, date, seq)
	if err != nil {
		return err
	}
	if !eff.Changed() {
		return nil
	}

	granularity := "connection"
	if eff.WellLevel {
		granularity = "well"
	}
	recordDirectiveMetric(ctx, granularity)
	s.directives++
	s.acc.MarkDirty()

	s.logger.Debug("directive applied",
		slog.String("target", ev.Target),
		slog.String("status", ev.Status),
		slog.String("granularity", granularity),
		slog.Int("wells", eff.Wells),
		slog.Int("rows", eff.Rows))
	return nil
}

// advanceBySteps sums a step record's days and moves the clock once.
func (s *Session) advanceBySteps(ev StepEvent) error {
	if len(ev.Days) == 0 {
		return fmt.Errorf("%w: step record has no steps", ErrInvalidEvent)
	}
	total := 0
	for _, d := range ev.Days {
		if d < 0 {
			return fmt.Errorf("%w: negative step %d", ErrInvalidSpan, d)
		}
		total += d
	}
	return s.clock.AdvanceBy(total)
}

// emitPending flushes a snapshot of the current date when changes are
// pending.
func (s *Session) emitPending() error {
	date, _ := s.clock.Current()
	if !s.acc.Flush(s.table, s.lumps, date) {
		return nil
	}
	if s.limits.MaxSnapshots > 0 && s.acc.Count() > s.limits.MaxSnapshots {
		return fmt.Errorf("%w: %d snapshots (max %d)", ErrLimit, s.acc.Count(), s.limits.MaxSnapshots)
	}
	s.logger.Debug("snapshot emitted",
		slog.Time("date", date),
		slog.Int("connections", s.table.CountConnections()))
	return nil
}

// noteOrSkip wraps a record error with its stream position and consults
// the error policy. A nil return means the record was skipped.
func (s *Session) noteOrSkip(seq int, kind string, err error) error {
	err = fmt.Errorf("record %d (%s): %w", seq, kind, err)
	if s.onError == nil {
		return err
	}
	if policyErr := s.onError(err); policyErr != nil {
		return policyErr
	}
	s.logger.Warn("schedule record skipped",
		slog.Int("seq", seq),
		slog.String("kind", kind),
		slog.String("error", err.Error()))
	return nil
}

// buildResult assembles the run outcome from the session state.
func (s *Session) buildResult(runID string, eventCount int, duration time.Duration) *Result {
	snaps := s.acc.Snapshots()
	return &Result{
		RunID:     runID,
		Snapshots: snaps,
		Lists:     s.lists,
		Lumps:     s.lumps,
		Stats: Stats{
			Events:      eventCount,
			Wells:       s.table.CountWells(),
			Connections: s.table.CountConnections(),
			Directives:  s.directives,
			Lists:       s.lists.Count(),
			Lumps:       s.lumps.Count(),
			Snapshots:   len(snaps),
			Duration:    duration,
		},
	}
}
