// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package name detects patient names: comma-structured "Last, First",
// explicitly labeled names, titled-case pairs, ALL-CAPS pairs, and
// hyphenated or apostrophe surnames. Name detection is the noisiest PHI
// category, so every local pattern runs through the shared vocabulary and
// role suppression before a span is emitted.
package name

import (
	"context"
	"regexp"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/roles"
	"phi-redact/internal/span"
	"phi-redact/internal/vocab"
)

var (
	lastFirstRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:-[A-Z][a-z]+)?),\s([A-Z][a-z]+)\b`)
	labeledRe   = regexp.MustCompile(`(?i)\b(?:patient|pt)(?:\s+name)?\s*[:#]\s*([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+){1,2})`)
	titledRe    = regexp.MustCompile(`\b([A-Z][a-z]{1,15}\s[A-Z][a-z]{1,15})\b`)
	allCapsRe   = regexp.MustCompile(`\b([A-Z]{2,15}\s[A-Z]{2,15})\b`)
	compoundRe  = regexp.MustCompile(`\b([A-Z][a-z]+\s)?((?:O'|D'|Mc|Mac)?[A-Z][a-z]+(?:-[A-Z][a-z]+)+|[A-Z]'[A-Z][a-z]+)\b`)
)

// suppressed applies the shared false-positive filters to a name candidate.
// Common vocabulary, medical terms, eponymous disease names, hospital-name
// membership, and provider-role evidence all veto a patient-name span.
func suppressed(text string, s span.Span) bool {
	if vocab.IsCommonWord(s.Text) || vocab.IsMedicalTerm(s.Text) || vocab.IsMedicalEponym(s.Text) {
		return true
	}
	if vocab.IsPartOfHospitalName(s.Text, detector.LineOf(text, s.CharacterStart, s.CharacterEnd)) {
		return true
	}
	return roles.Classify(text, s.CharacterStart, s.CharacterEnd).Role == roles.Provider
}

// LastFirst detects comma-structured "Last, First" names. The comma
// structure is strong evidence on its own, so these spans carry a
// context-confirmed priority.
type LastFirst struct {
	accel *gateway.Consultant
}

func NewLastFirst(accel *gateway.Consultant) *LastFirst { return &LastFirst{accel: accel} }

func (d *LastFirst) Name() string          { return "name.last-first" }
func (d *LastFirst) Type() span.FilterType { return span.TypeName }
func (d *LastFirst) Priority() int         { return span.PriorityConfirmed }

func (d *LastFirst) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range lastFirstRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 0, d.Type(), 0.9, d.Priority(), "Last, First format")
		if err != nil {
			return nil, err
		}
		if suppressed(text, s) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Labeled detects names following an explicit patient label such as
// "Patient: John Smith". The label is the strongest context evidence a name
// detector sees.
type Labeled struct {
	accel *gateway.Consultant
}

func NewLabeled(accel *gateway.Consultant) *Labeled { return &Labeled{accel: accel} }

func (d *Labeled) Name() string          { return "name.labeled" }
func (d *Labeled) Type() span.FilterType { return span.TypeName }
func (d *Labeled) Priority() int         { return span.PriorityLabeled }

func (d *Labeled) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range labeledRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.95, d.Priority(), "labeled patient name")
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

// TitledCase detects bare "First Last" titled-case pairs. These are weak
// evidence and rely entirely on the suppression filters; on degraded OCR
// input the confidence floor from the chaos estimate applies.
type TitledCase struct {
	accel *gateway.Consultant
}

func NewTitledCase(accel *gateway.Consultant) *TitledCase { return &TitledCase{accel: accel} }

func (d *TitledCase) Name() string          { return "name.titled-case" }
func (d *TitledCase) Type() span.FilterType { return span.TypeName }
func (d *TitledCase) Priority() int         { return span.PriorityDefault }

func (d *TitledCase) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	confidence := 0.5
	if dc != nil && dc.Chaos.RecommendedThreshold < 0.5 {
		// Degraded documents trade precision for recall.
		confidence = 0.6
	}

	var out []span.Span
	for _, idx := range titledRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), confidence, d.Priority(), "titled-case pair")
		if err != nil {
			return nil, err
		}
		if suppressed(text, s) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// AllCaps detects ALL-CAPS name pairs, common in scanned form headers.
type AllCaps struct {
	accel *gateway.Consultant
}

func NewAllCaps(accel *gateway.Consultant) *AllCaps { return &AllCaps{accel: accel} }

func (d *AllCaps) Name() string          { return "name.all-caps" }
func (d *AllCaps) Type() span.FilterType { return span.TypeName }
func (d *AllCaps) Priority() int         { return span.PriorityDefault }

func (d *AllCaps) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range allCapsRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.45, d.Priority(), "ALL-CAPS pair")
		if err != nil {
			return nil, err
		}
		if vocab.IsCommonWord(s.Text) || vocab.IsMedicalTerm(s.Text) {
			continue
		}
		if roles.Classify(text, s.CharacterStart, s.CharacterEnd).Role == roles.Provider {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Compound detects hyphenated and apostrophe surnames (Smith-Jones,
// O'Brien), optionally preceded by a given name.
type Compound struct {
	accel *gateway.Consultant
}

func NewCompound(accel *gateway.Consultant) *Compound { return &Compound{accel: accel} }

func (d *Compound) Name() string          { return "name.compound" }
func (d *Compound) Type() span.FilterType { return span.TypeName }
func (d *Compound) Priority() int         { return 80 }

func (d *Compound) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range compoundRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 0, d.Type(), 0.7, d.Priority(), "hyphenated or apostrophe surname")
		if err != nil {
			return nil, err
		}
		if suppressed(text, s) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
