// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability provides structured operation logging for every
// pipeline component. Detection-quality issues are never errors; only
// structural failures are. Both end up here as timed, labeled records.
package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Level controls how much the observer emits.
type Level int

const (
	LevelOff     Level = 0
	LevelMetrics Level = 1
	LevelDebug   Level = 2
)

// Observer records timed operations across pipeline components.
type Observer struct {
	level  Level
	mu     sync.Mutex
	writer io.Writer
}

// NewObserver creates an observer writing JSON records to writer at the
// given level. A nil writer silences output regardless of level.
func NewObserver(level Level, writer io.Writer) *Observer {
	if writer == nil {
		level = LevelOff
	}
	return &Observer{level: level, writer: writer}
}

// Record is one observed operation.
type Record struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	DocumentID string                 `json:"document_id,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	SpanCount  int                    `json:"span_count,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StartTiming begins timing an operation and returns the closure that
// completes it.
func (o *Observer) StartTiming(component, operation, documentID string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()
	return func(success bool, metadata map[string]interface{}) {
		o.Log(Record{
			Component:  component,
			Operation:  operation,
			DocumentID: documentID,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// Log emits one record. Records are only serialized at debug level; the
// metrics level exists so callers can cheaply keep timing closures in place.
func (o *Observer) Log(rec Record) {
	if o == nil || o.level < LevelDebug {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = json.NewEncoder(o.writer).Encode(rec)
}

// DetectorFailure logs an isolated per-detector failure. These are the
// fail-open path: the detector contributed nothing for this document, and
// that fact must never be silently dropped.
func (o *Observer) DetectorFailure(detectorName, documentID string, err error) {
	if o == nil || o.level == LevelOff {
		return
	}
	rec := Record{
		Component:  "engine",
		Operation:  "detector_failure",
		DocumentID: documentID,
		Success:    false,
		Error:      err.Error(),
		Metadata:   map[string]interface{}{"detector": detectorName},
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = json.NewEncoder(o.writer).Encode(rec)
}
