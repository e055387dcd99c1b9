// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config provides configuration loading for the schedule service.
//
// This package implements the status spelling table loader, which maps the
// status spellings accepted by open/shut directives (OPEN, SHUT, STOP, ...)
// to the effect class they carry.
//
// Thread Safety:
//
//	All exported functions and types are safe for concurrent use.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxYAMLFileSize is the maximum allowed YAML file size (64KB).
	// Prevents memory issues from oversized external files.
	MaxYAMLFileSize = 64 * 1024

	// MaxSpellings is the maximum number of spellings allowed in the table.
	MaxSpellings = 64
)

// =============================================================================
// Embedded Default Table
// =============================================================================

//go:embed status_classes.yaml
var defaultStatusTableYAML []byte

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	statusLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellsched_status_lookups_total",
		Help: "Total status spelling classifications by class",
	}, []string{"class"})

	statusUnknownSpellings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellsched_status_unknown_spellings_total",
		Help: "Total directive status spellings not found in the table",
	})

	statusTableLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellsched_status_table_load_errors_total",
		Help: "Total status spelling table load errors",
	})

	statusTableLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wellsched_status_table_load_duration_seconds",
		Help:    "Duration of status spelling table loading",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5},
	})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var statusTableTracer = otel.Tracer("wellsched.config.statustable")

// =============================================================================
// Types
// =============================================================================

// Class is the effect a status spelling has when a directive is applied.
type Class string

const (
	// ClassOpen spellings open the target (OPEN, POPN, AUTO, ...).
	ClassOpen Class = "open"

	// ClassClosed spellings close the target (SHUT, STOP, ...).
	ClassClosed Class = "closed"
)

// StatusTableYAML is the root structure for YAML deserialization.
type StatusTableYAML struct {
	Statuses []StatusEntryYAML `yaml:"statuses"`
}

// StatusEntryYAML represents a single spelling entry in the YAML file.
type StatusEntryYAML struct {
	Spelling string `yaml:"spelling"`
	Class    string `yaml:"class"`
}

// StatusTable maps status spellings to their effect class.
//
// Thread Safety: Safe for concurrent use after initialization.
type StatusTable struct {
	// classes maps uppercase spellings to their class.
	classes map[string]Class

	// loadedAt is when the table was loaded (Unix milliseconds UTC).
	loadedAt int64
}

// =============================================================================
// Singleton Table
// =============================================================================

var (
	statusMu      sync.RWMutex
	statusOnce    sync.Once
	cachedTable   *StatusTable
	statusLoadErr error
)

// GetStatusTable returns the cached status spelling table.
//
// Description:
//
//	Loads the table on first call and caches it for subsequent calls.
//	Uses sync.Once for thread-safe initialization.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*StatusTable - The loaded table. Never nil on success.
//	error - Non-nil if loading failed.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func GetStatusTable(ctx context.Context) (*StatusTable, error) {
	if ctx == nil {
		return nil, fmt.Errorf("GetStatusTable: ctx must not be nil")
	}

	statusMu.RLock()
	if cachedTable != nil || statusLoadErr != nil {
		tbl, err := cachedTable, statusLoadErr
		statusMu.RUnlock()
		return tbl, err
	}
	statusMu.RUnlock()

	statusMu.Lock()
	defer statusMu.Unlock()

	// Double-check after acquiring write lock
	if cachedTable != nil || statusLoadErr != nil {
		return cachedTable, statusLoadErr
	}

	statusOnce.Do(func() {
		cachedTable, statusLoadErr = loadStatusTable(ctx)
	})

	return cachedTable, statusLoadErr
}

// ResetStatusTable resets the cached table for testing.
//
// Description:
//
//	Clears the cached table and sync.Once state to allow re-loading the
//	table on the next call to GetStatusTable.
//
// WARNING: This function is intended for testing only. Do not use in
// production code as it can cause inconsistent state if called while other
// goroutines are using the table.
func ResetStatusTable() {
	statusMu.Lock()
	defer statusMu.Unlock()
	statusOnce = sync.Once{}
	cachedTable = nil
	statusLoadErr = nil
}

// =============================================================================
// Loading Logic
// =============================================================================

// loadStatusTable loads the table from YAML.
//
// An external file, when configured and readable, overrides the embedded
// default so deployments can extend the spelling set without rebuilding.
func loadStatusTable(ctx context.Context) (*StatusTable, error) {
	ctx, span := statusTableTracer.Start(ctx, "statustable.Load")
	defer span.End()

	startTime := time.Now()
	defer func() {
		statusTableLoadDuration.Observe(time.Since(startTime).Seconds())
	}()

	externalPath := getExternalTablePath()
	var yamlData []byte
	var source string

	if externalPath != "" {
		data, err := loadExternalYAML(ctx, externalPath)
		if err == nil {
			yamlData = data
			source = "external"
			slog.Info("Loaded status spelling table from external file",
				slog.String("path", externalPath))
		} else {
			slog.Warn("External status spelling table not available, using embedded default",
				slog.String("path", externalPath),
				slog.String("error", err.Error()))
		}
	}

	if yamlData == nil {
		yamlData = defaultStatusTableYAML
		source = "embedded"
		slog.Debug("Using embedded status spelling table")
	}

	span.SetAttributes(
		attribute.String("source", source),
		attribute.Int("yaml_size", len(yamlData)),
	)

	table, err := parseStatusTableYAML(ctx, yamlData)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		statusTableLoadErrors.Inc()
		return nil, fmt.Errorf("parsing status spelling table YAML: %w", err)
	}

	span.SetAttributes(attribute.Int("spelling_count", table.Count()))

	slog.Info("Status spelling table loaded",
		slog.Int("spelling_count", table.Count()),
		slog.String("source", source))

	return table, nil
}

// getExternalTablePath returns the path to an external table file.
// Returns empty string if no external path is configured.
func getExternalTablePath() string {
	if path := os.Getenv("WELLSCHED_STATUS_TABLE"); path != "" {
		return path
	}

	locations := []string{
		"./config/status_classes.yaml",
		"./status_classes.yaml",
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			absPath, _ := filepath.Abs(loc)
			return absPath
		}
	}

	return ""
}

// loadExternalYAML loads YAML from an external file with path and size
// checks.
func loadExternalYAML(ctx context.Context, path string) ([]byte, error) {
	_, span := statusTableTracer.Start(ctx, "statustable.LoadExternal",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if strings.Contains(absPath, "..") {
		return nil, fmt.Errorf("loadExternalYAML: path traversal not allowed: %s", absPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if info.Size() > MaxYAMLFileSize {
		return nil, fmt.Errorf("YAML file too large: %d bytes (max %d)", info.Size(), MaxYAMLFileSize)
	}

	span.SetAttributes(attribute.Int64("file_size", info.Size()))

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return data, nil
}

// parseStatusTableYAML parses YAML data into a table.
//
// Spellings are stored uppercase so classification is case-insensitive.
func parseStatusTableYAML(ctx context.Context, data []byte) (*StatusTable, error) {
	_, span := statusTableTracer.Start(ctx, "statustable.Parse")
	defer span.End()

	var yamlTable StatusTableYAML
	if err := yaml.Unmarshal(data, &yamlTable); err != nil {
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}

	if len(yamlTable.Statuses) == 0 {
		return nil, fmt.Errorf("parseStatusTableYAML: table defines no spellings")
	}
	if len(yamlTable.Statuses) > MaxSpellings {
		return nil, fmt.Errorf("too many spellings: %d (max %d)", len(yamlTable.Statuses), MaxSpellings)
	}

	table := &StatusTable{
		classes:  make(map[string]Class, len(yamlTable.Statuses)),
		loadedAt: time.Now().UnixMilli(),
	}

	for i, entry := range yamlTable.Statuses {
		if entry.Spelling == "" {
			return nil, fmt.Errorf("parseStatusTableYAML: entry at index %d has empty spelling", i)
		}

		spelling := strings.ToUpper(strings.TrimSpace(entry.Spelling))
		if _, dup := table.classes[spelling]; dup {
			return nil, fmt.Errorf("parseStatusTableYAML: duplicate spelling %q", spelling)
		}

		switch Class(entry.Class) {
		case ClassOpen, ClassClosed:
			table.classes[spelling] = Class(entry.Class)
		default:
			return nil, fmt.Errorf("parseStatusTableYAML: spelling %q has unknown class %q", spelling, entry.Class)
		}
	}

	span.SetAttributes(attribute.Int("spelling_count", len(table.classes)))

	return table, nil
}

// =============================================================================
// Table Methods
// =============================================================================

// Classify returns the effect class of a status spelling.
//
// Description:
//
//	Lookup is case-insensitive. The second return value is false when the
//	spelling is not in the table; deciding how to treat unknown spellings
//	is the caller's business.
//
// Inputs:
//
//	spelling - The directive status spelling to classify.
//
// Outputs:
//
//	Class - The effect class.
//	bool - True if the spelling is known.
func (t *StatusTable) Classify(spelling string) (Class, bool) {
	if t == nil || t.classes == nil {
		return "", false
	}
	class, ok := t.classes[strings.ToUpper(strings.TrimSpace(spelling))]
	if ok {
		statusLookups.WithLabelValues(string(class)).Inc()
	}
	return class, ok
}

// Spellings returns the known spellings sorted alphabetically.
func (t *StatusTable) Spellings() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.classes))
	for s := range t.classes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of spellings in the table.
//
// Thread Safety: Safe for concurrent use (read-only after initialization).
func (t *StatusTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.classes)
}

// LoadedAt returns when the table was loaded.
//
// Outputs:
//
//	int64 - Unix milliseconds UTC when the table was loaded.
//
// Thread Safety: Safe for concurrent use (read-only after initialization).
func (t *StatusTable) LoadedAt() int64 {
	if t == nil {
		return 0
	}
	return t.loadedAt
}

// =============================================================================
// Metric Helpers
// =============================================================================

// RecordUnknownSpelling records a directive status spelling that was not
// found in the table.
//
// Thread Safety: Safe for concurrent use.
func RecordUnknownSpelling() {
	statusUnknownSpellings.Inc()
}
