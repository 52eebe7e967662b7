// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine orchestrates one document through the full pipeline:
// parallel detection, conflict resolution, and reversible application.
// Detectors are embarrassingly parallel and fully isolated; one panicking
// or failing detector never takes the other two dozen down with it.
package engine

import (
	"context"
	"fmt"
	"time"

	"phi-redact/internal/applier"
	"phi-redact/internal/detector"
	"phi-redact/internal/observability"
	"phi-redact/internal/registry"
	"phi-redact/internal/resolver"
	"phi-redact/internal/span"
)

// FailurePolicy decides what a detector failure does to the document.
type FailurePolicy string

const (
	// FailOpen treats a failed detector's contribution as empty and keeps
	// going. The failure is always logged with detector and document
	// identity but one bad detector does not block the rest.
	FailOpen FailurePolicy = "fail-open"

	// Abort rejects the whole document on the first detector failure. Risk
	// posture for callers who would rather not release a document any
	// detector could not examine.
	Abort FailurePolicy = "abort"
)

// Result is the outcome of processing one document.
type Result struct {
	DocumentID   string            `json:"document_id"`
	RedactedText string            `json:"redacted_text"`
	TokenMap     map[string]string `json:"token_map"`
	Spans        []span.Span       `json:"spans"`
	Salt         string            `json:"salt"`

	// Partial is set when the per-document deadline expired before every
	// detector reported. The spans from detectors that did finish are
	// resolved and applied; the caller decides whether a partially
	// examined document is acceptable.
	Partial bool `json:"partial"`

	// FailedDetectors lists detectors whose contribution was treated as
	// empty under the fail-open policy.
	FailedDetectors []string `json:"failed_detectors,omitempty"`
}

// Engine runs documents through the registry's detector set.
type Engine struct {
	registry *registry.Registry
	observer *observability.Observer
	policy   FailurePolicy
	deadline time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithFailurePolicy sets the detector-failure policy.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithDeadline bounds the detection pass per document. Zero means no bound.
func WithDeadline(d time.Duration) Option {
	return func(e *Engine) { e.deadline = d }
}

// New creates an engine over an initialized (or initializable) registry.
func New(reg *registry.Registry, obs *observability.Observer, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		observer: obs,
		policy:   FailOpen,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.observer == nil {
		e.observer = observability.NewObserver(observability.LevelOff, nil)
	}
	return e
}

type detectorReport struct {
	order int
	name  string
	spans []span.Span
	err   error
}

// Process runs the full pipeline over one document.
func (e *Engine) Process(ctx context.Context, text string) (*Result, error) {
	if err := e.registry.Initialize(); err != nil {
		return nil, err
	}
	detectors := e.registry.All()

	dc := detector.NewDocContext(text)
	done := e.observer.StartTiming("engine", "process", dc.DocumentID)

	detectCtx := ctx
	if e.deadline > 0 {
		var cancel context.CancelFunc
		detectCtx, cancel = context.WithTimeout(ctx, e.deadline)
		defer cancel()
	}

	res := &Result{DocumentID: dc.DocumentID}
	collected, err := e.collect(detectCtx, detectors, text, dc, res)
	if err != nil {
		done(false, nil)
		return nil, err
	}

	resolved, err := resolver.Resolve(collected)
	if err != nil {
		done(false, nil)
		return nil, err
	}

	applied, err := applier.Apply(text, resolved)
	if err != nil {
		done(false, nil)
		return nil, err
	}

	res.RedactedText = applied.RedactedText
	res.TokenMap = applied.TokenMap
	res.Spans = applied.Spans
	res.Salt = applied.Salt

	done(true, map[string]interface{}{
		"spans":   len(res.Spans),
		"partial": res.Partial,
	})
	return res, nil
}

// collect fans the detector set out over text and gathers their reports.
// On deadline or cancellation it flags res.Partial, drains whatever reports
// already sit in the buffer so finished detectors still contribute, and
// stops waiting on stragglers.
func (e *Engine) collect(ctx context.Context, detectors []detector.Detector, text string, dc *detector.DocContext, res *Result) ([]span.Span, error) {
	reports := make(chan detectorReport, len(detectors))
	for i, d := range detectors {
		go runIsolated(ctx, i, d, text, dc, reports)
	}

	var collected []span.Span
	handle := func(rep detectorReport) error {
		if rep.err != nil {
			e.observer.DetectorFailure(rep.name, dc.DocumentID, rep.err)
			if e.policy == Abort {
				return fmt.Errorf("detector %s failed: %w", rep.name, rep.err)
			}
			res.FailedDetectors = append(res.FailedDetectors, rep.name)
			return nil
		}
		for _, s := range rep.spans {
			s.Detector = rep.name
			s.DetectorOrder = rep.order
			collected = append(collected, s)
		}
		return nil
	}

	for pending := len(detectors); pending > 0; {
		select {
		case rep := <-reports:
			pending--
			if err := handle(rep); err != nil {
				return nil, err
			}
		case <-ctx.Done():
			res.Partial = true
			// The channel is buffered for the full set, so late finishers
			// do not leak goroutines and anything already reported is
			// still available here.
			for pending > 0 {
				select {
				case rep := <-reports:
					pending--
					if err := handle(rep); err != nil {
						return nil, err
					}
				default:
					return collected, nil
				}
			}
		}
	}
	return collected, nil
}

// runIsolated executes one detector with panic isolation. A panic is
// reported as that detector's error, not the process's.
func runIsolated(ctx context.Context, order int, d detector.Detector, text string, dc *detector.DocContext, out chan<- detectorReport) {
	defer func() {
		if r := recover(); r != nil {
			out <- detectorReport{order: order, name: d.Name(), err: fmt.Errorf("panic: %v", r)}
		}
	}()

	spans, err := d.Detect(ctx, text, dc)
	out <- detectorReport{order: order, name: d.Name(), spans: spans, err: err}
}
