// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector defines the contract every PHI detector implements and
// the per-document context shared between sibling detectors.
package detector

import (
	"context"
	"strings"
	"sync"

	"phi-redact/internal/chaos"
	"phi-redact/internal/span"

	"github.com/google/uuid"
)

// Detector is the contract for one independent PHI detector. Detect must be
// a pure function of (text, context state): it must not mutate text, must
// return spans whose offsets are valid within text, and must terminate on
// pathological input. The one sanctioned side effect is reading and writing
// the per-document memo cache in DocContext.
type Detector interface {
	// Name identifies the detector in logs and span provenance.
	Name() string

	// Type is the detector's static category; it does not depend on input.
	Type() span.FilterType

	// Priority is the default priority the detector's spans carry absent
	// stronger contextual evidence.
	Priority() int

	// Detect returns every span this detector independently believes is PHI
	// of its category.
	Detect(ctx context.Context, text string, dc *DocContext) ([]span.Span, error)
}

// DocContext carries per-document state: the document identity, the OCR
// quality estimate, and a memo cache detectors may share to avoid
// recomputing an expensive sub-scan twice. One DocContext exists per
// document and is discarded after processing.
//
// The memo cache is safe under concurrent use from parallel detectors.
// Cached computations must be idempotent: a race costs a redundant
// computation, never a wrong answer.
type DocContext struct {
	DocumentID string
	Chaos      chaos.Analysis

	mu   sync.Mutex
	memo map[string]interface{}
}

// NewDocContext creates the context for one document.
func NewDocContext(text string) *DocContext {
	return &DocContext{
		DocumentID: uuid.NewString(),
		Chaos:      chaos.Analyze(text),
		memo:       make(map[string]interface{}),
	}
}

// Memo returns the cached value for key, computing and storing it on first
// use. The compute function runs outside the lock so sibling detectors are
// not serialized behind a slow computation; on a concurrent first use the
// first stored value wins.
func (dc *DocContext) Memo(key string, compute func() interface{}) interface{} {
	dc.mu.Lock()
	if v, ok := dc.memo[key]; ok {
		dc.mu.Unlock()
		return v
	}
	dc.mu.Unlock()

	v := compute()

	dc.mu.Lock()
	defer dc.mu.Unlock()
	if existing, ok := dc.memo[key]; ok {
		return existing
	}
	dc.memo[key] = v
	return v
}

// HasKeywordNear reports whether any keyword occurs within radius characters
// of the [start,end) range, case-insensitively. Detectors use it to confirm
// a structural match with surrounding vocabulary before trusting it.
func HasKeywordNear(text string, start, end, radius int, keywords []string) bool {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, kw := range keywords {
		if strings.Contains(window, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// LineOf returns the full line containing the [start,end) range, for audit
// context and label checks.
func LineOf(text string, start, end int) string {
	lo := strings.LastIndexByte(text[:start], '\n') + 1
	hi := strings.IndexByte(text[end:], '\n')
	if hi < 0 {
		hi = len(text)
	} else {
		hi += end
	}
	return text[lo:hi]
}
