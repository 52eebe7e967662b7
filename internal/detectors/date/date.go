// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package date detects calendar dates in numeric and written form, and
// birth dates behind an explicit DOB label.
package date

import (
	"context"
	"regexp"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

var (
	numericRe = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
	writtenRe = regexp.MustCompile(`(?i)\b(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)
	dobRe     = regexp.MustCompile(`(?i)\b(?:DOB|D\.O\.B\.|date\s+of\s+birth|born(?:\s+on)?)\s*[:\s]\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
)

// Numeric detects slash- and dash-separated numeric dates.
type Numeric struct {
	accel *gateway.Consultant
}

func NewNumeric(accel *gateway.Consultant) *Numeric { return &Numeric{accel: accel} }

func (d *Numeric) Name() string          { return "date.numeric" }
func (d *Numeric) Type() span.FilterType { return span.TypeDate }
func (d *Numeric) Priority() int         { return span.PriorityDefault }

func (d *Numeric) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range numericRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.85, d.Priority(), "numeric date")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Written detects month-name dates such as "January 5, 1994".
type Written struct {
	accel *gateway.Consultant
}

func NewWritten(accel *gateway.Consultant) *Written { return &Written{accel: accel} }

func (d *Written) Name() string          { return "date.written" }
func (d *Written) Type() span.FilterType { return span.TypeDate }
func (d *Written) Priority() int         { return span.PriorityDefault }

func (d *Written) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range writtenRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 0, d.Type(), 0.85, d.Priority(), "written date")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// BirthDate detects dates behind an explicit DOB label. The label makes the
// date a direct identifier regardless of its numeric shape, so these spans
// carry a context-confirmed priority and win overlaps against the generic
// numeric detector.
type BirthDate struct {
	accel *gateway.Consultant
}

func NewBirthDate(accel *gateway.Consultant) *BirthDate { return &BirthDate{accel: accel} }

func (d *BirthDate) Name() string          { return "date.birth" }
func (d *BirthDate) Type() span.FilterType { return span.TypeDate }
func (d *BirthDate) Priority() int         { return span.PriorityConfirmed }

func (d *BirthDate) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range dobRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.95, d.Priority(), "DOB-labeled date")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
