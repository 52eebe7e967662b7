// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gateway is the client side of the accelerated scan backend: a
// faster native scanner consulted by detectors before they run their local
// pattern cascades. The gateway is best-effort and untrusted — offsets are
// re-validated against the document before anything downstream sees them,
// and any failure or timeout simply means "run the local patterns".
package gateway

import (
	"context"
	"time"

	"phi-redact/internal/span"
)

// Candidate is one pre-computed detection returned by the backend.
type Candidate struct {
	Text           string  `json:"text"`
	CharacterStart int     `json:"character_start"`
	CharacterEnd   int     `json:"character_end"`
	Confidence     float64 `json:"confidence"`
	Pattern        string  `json:"pattern"`
}

// Gateway returns pre-computed candidate detections for one category over a
// document. A nil slice with a nil error means the backend has nothing for
// this category; the caller falls back to local patterns either way.
type Gateway interface {
	Detections(ctx context.Context, text, category string) ([]Candidate, error)
	Available() bool
}

// Disabled is the no-op gateway used when acceleration is turned off.
type Disabled struct{}

func (Disabled) Detections(ctx context.Context, text, category string) ([]Candidate, error) {
	return nil, nil
}

func (Disabled) Available() bool { return false }

// DefaultTimeout bounds a single gateway consultation. A hung backend must
// never hang the document's detection pass.
const DefaultTimeout = 2 * time.Second

// Consultant implements the strict two-tier fallback protocol on behalf of
// detectors: consult the gateway once, trust validated candidates, and
// otherwise report nothing so the caller runs its local cascade. Candidates
// and local results are never merged for the same detector call.
type Consultant struct {
	gw      Gateway
	timeout time.Duration
}

// NewConsultant wraps a gateway with the per-call timeout. A nil gateway
// yields a consultant that always reports nothing.
func NewConsultant(gw Gateway, timeout time.Duration) *Consultant {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Consultant{gw: gw, timeout: timeout}
}

// Spans consults the gateway for category and wraps validated candidates as
// spans of the given type and priority. A nil return means the detector
// must run its local patterns.
func (c *Consultant) Spans(ctx context.Context, text string, ft span.FilterType, priority int) []span.Span {
	if c == nil || c.gw == nil || !c.gw.Available() {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cands, err := c.gw.Detections(callCtx, text, string(ft))
	if err != nil || len(cands) == 0 {
		// Timeout and transport failures are the expected degraded mode;
		// the detector's local cascade covers for them.
		return nil
	}

	spans := make([]span.Span, 0, len(cands))
	for _, cand := range cands {
		s, err := span.New(text, cand.CharacterStart, cand.CharacterEnd, ft, clamp01(cand.Confidence), priority, cand.Pattern)
		if err != nil {
			// The backend returned offsets that do not line up with this
			// document. Drop the candidate rather than trust it.
			continue
		}
		if cand.Text != "" && cand.Text != s.Text {
			continue
		}
		spans = append(spans, s)
	}
	if len(spans) == 0 {
		return nil
	}
	return spans
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
