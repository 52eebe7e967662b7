// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package provider detects clinician names: honorific-prefixed names,
// credential-suffixed names, and signature lines. Spans carry the
// PROVIDER_NAME category so the resolver never silently downgrades a
// provider to a patient name. The honorific itself is not part of the span;
// "Dr." stays in the document, the name behind it does not.
package provider

import (
	"context"
	"regexp"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
	"phi-redact/internal/vocab"
)

// PriorityProvider sits above context-confirmed patient names so that
// "Dr. Jane Doe, MD" resolves as a provider even when a name detector also
// claims the range.
const PriorityProvider = 160

var (
	prefixedRe = regexp.MustCompile(`\b(?:Dr|Doctor|Prof|Professor)\.?\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2})`)
	suffixedRe = regexp.MustCompile(`\b([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2}),\s*(?:MD|DO|PhD|PA-C|NP|RN|APRN|CRNA|DDS|DPM)\b`)
	signedRe   = regexp.MustCompile(`(?i)\b(?:signed|dictated|attested|verified|electronically\s+signed)\s+by\s*[:\s]\s*([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){0,2})`)
)

// Credentialed detects names carrying an honorific prefix or a clinical
// credential suffix.
type Credentialed struct {
	accel *gateway.Consultant
}

func NewCredentialed(accel *gateway.Consultant) *Credentialed {
	return &Credentialed{accel: accel}
}

func (d *Credentialed) Name() string          { return "provider.credentialed" }
func (d *Credentialed) Type() span.FilterType { return span.TypeProvider }
func (d *Credentialed) Priority() int         { return PriorityProvider }

func (d *Credentialed) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range prefixedRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.9, d.Priority(), "honorific-prefixed name")
		if err != nil {
			return nil, err
		}
		if vocab.IsMedicalEponym(s.Text) || vocab.IsCommonWord(s.Text) {
			continue
		}
		out = append(out, s)
	}
	for _, idx := range suffixedRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.9, d.Priority(), "credential-suffixed name")
		if err != nil {
			return nil, err
		}
		if vocab.IsCommonWord(s.Text) || vocab.IsMedicalTerm(s.Text) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Signature detects the name on signature and dictation lines.
type Signature struct {
	accel *gateway.Consultant
}

func NewSignature(accel *gateway.Consultant) *Signature { return &Signature{accel: accel} }

func (d *Signature) Name() string          { return "provider.signature" }
func (d *Signature) Type() span.FilterType { return span.TypeProvider }
func (d *Signature) Priority() int         { return PriorityProvider }

func (d *Signature) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range signedRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.9, d.Priority(), "signature line")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
