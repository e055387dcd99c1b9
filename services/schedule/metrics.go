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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for schedule resolution operations.
var (
	tracer = otel.Tracer("wellsched.schedule")
	meter  = otel.Meter("wellsched.schedule")
)

// Metrics for schedule runs.
var (
	runLatency       metric.Float64Histogram
	runsTotal        metric.Int64Counter
	eventsFolded     metric.Int64Counter
	directivesTotal  metric.Int64Counter
	snapshotsEmitted metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"schedule_run_duration_seconds",
			metric.WithDescription("Duration of schedule resolution runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runsTotal, err = meter.Int64Counter(
			"schedule_runs_total",
			metric.WithDescription("Total number of schedule resolution runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		eventsFolded, err = meter.Int64Counter(
			"schedule_events_total",
			metric.WithDescription("Total schedule records folded by kind"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		directivesTotal, err = meter.Int64Counter(
			"schedule_directives_total",
			metric.WithDescription("Total open/shut directives applied by granularity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		snapshotsEmitted, err = meter.Int64Histogram(
			"schedule_snapshots_emitted",
			metric.WithDescription("Number of snapshots emitted per run"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for a schedule resolution run.
func startRunSpan(ctx context.Context, runID string, eventCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Session.Run",
		trace.WithAttributes(
			attribute.String("schedule.run_id", runID),
			attribute.Int("schedule.event_count", eventCount),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, snapshotCount int, success bool) {
	span.SetAttributes(
		attribute.Int("schedule.snapshot_count", snapshotCount),
		attribute.Bool("schedule.success", success),
	)
}

// recordRunMetrics records metrics for a completed run.
func recordRunMetrics(ctx context.Context, duration time.Duration, snapshotCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", success),
	)

	runLatency.Record(ctx, duration.Seconds(), attrs)
	runsTotal.Add(ctx, 1, attrs)
	snapshotsEmitted.Record(ctx, int64(snapshotCount))
}

// recordEventMetric records one folded record by kind.
func recordEventMetric(ctx context.Context, kind string) {
	if err := initMetrics(); err != nil {
		return
	}
	eventsFolded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_kind", kind),
	))
}

// recordDirectiveMetric records an applied directive by granularity.
func recordDirectiveMetric(ctx context.Context, granularity string) {
	if err := initMetrics(); err != nil {
		return
	}
	directivesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("granularity", granularity),
	))
}
