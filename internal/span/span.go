// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package span defines the unit of detection: a located, typed,
// confidence-scored PHI candidate. Every detector in the engine produces
// spans through the constructors here so that offset bookkeeping has exactly
// one implementation.
package span

import (
	"fmt"
)

// Priority bands. Ordinary pattern matches sit in the 60-100 range;
// context-confirmed matches (an explicit label, a comma-structured
// "Last, First", a credential suffix) sit in the 150-180 range and win
// overlap tie-breaks against bare guesses.
const (
	PriorityLow       = 60
	PriorityDefault   = 75
	PriorityHigh      = 100
	PriorityConfirmed = 150
	PriorityLabeled   = 170
	PriorityMax       = 180
)

// ContextWindow is the number of characters captured on each side of a
// match for the audit context.
const ContextWindow = 40

// Span represents one detected PHI candidate. CharacterStart/CharacterEnd
// are half-open byte offsets into the source document.
//
// A span is immutable after creation except for the resolver-owned fields
// (Applied, Ignored, AmbiguousWith, DisambiguationScore) and the
// applier-owned fields (Replacement, Salt).
type Span struct {
	Text           string     `json:"text"`
	OriginalValue  string     `json:"original_value"`
	CharacterStart int        `json:"character_start"`
	CharacterEnd   int        `json:"character_end"`
	FilterType     FilterType `json:"filter_type"`
	Confidence     float64    `json:"confidence"`
	Priority       int        `json:"priority"`
	Pattern        string     `json:"pattern"`
	Context        string     `json:"context,omitempty"`

	// Provenance: which detector produced the span and that detector's
	// registration order. Registration order is the final, arrival-order
	// independent tie-break key during conflict resolution.
	Detector      string `json:"detector"`
	DetectorOrder int    `json:"detector_order"`

	// Resolver-owned fields.
	Applied             bool    `json:"applied"`
	Ignored             bool    `json:"ignored"`
	AmbiguousWith       []Span  `json:"ambiguous_with,omitempty"`
	DisambiguationScore float64 `json:"disambiguation_score,omitempty"`

	// Applier-owned fields, empty until application.
	Replacement string `json:"replacement,omitempty"`
	Salt        string `json:"salt,omitempty"`
}

// New builds a span over doc[start:end] and verifies the offsets against the
// source text. This is the single path through which detectors create spans;
// a span whose recorded text does not match the document is rejected here
// rather than corrupting the redaction downstream.
func New(doc string, start, end int, ft FilterType, confidence float64, priority int, pattern string) (Span, error) {
	if start < 0 || end > len(doc) || start >= end {
		return Span{}, fmt.Errorf("span offsets [%d,%d) out of range for document of length %d", start, end, len(doc))
	}
	if confidence < 0 || confidence > 1 {
		return Span{}, fmt.Errorf("span confidence %v outside [0,1]", confidence)
	}
	text := doc[start:end]
	return Span{
		Text:           text,
		OriginalValue:  text,
		CharacterStart: start,
		CharacterEnd:   end,
		FilterType:     ft,
		Confidence:     confidence,
		Priority:       priority,
		Pattern:        pattern,
		Context:        contextWindow(doc, start, end),
	}, nil
}

// FromSubmatch builds a span from one entry of
// regexp.FindAllStringSubmatchIndex: group 0 is the full match, group n the
// n-th capture. Detectors that anchor on a capture group inside a larger
// match use this instead of recomputing offsets by substring search.
func FromSubmatch(doc string, idx []int, group int, ft FilterType, confidence float64, priority int, pattern string) (Span, error) {
	lo, hi := 2*group, 2*group+1
	if hi >= len(idx) || idx[lo] < 0 || idx[hi] < 0 {
		return Span{}, fmt.Errorf("capture group %d absent from match", group)
	}
	return New(doc, idx[lo], idx[hi], ft, confidence, priority, pattern)
}

// Length returns the character length of the span.
func (s Span) Length() int {
	return s.CharacterEnd - s.CharacterStart
}

// Overlaps reports whether two spans intersect. Touching boundaries
// (one span's end equals the other's start) do not overlap; full containment
// does.
func (s Span) Overlaps(o Span) bool {
	return s.CharacterStart < o.CharacterEnd && o.CharacterStart < s.CharacterEnd
}

// Contains reports whether s fully contains o.
func (s Span) Contains(o Span) bool {
	return s.CharacterStart <= o.CharacterStart && s.CharacterEnd >= o.CharacterEnd
}

// SamePosition reports whether two spans cover the identical range.
func (s Span) SamePosition(o Span) bool {
	return s.CharacterStart == o.CharacterStart && s.CharacterEnd == o.CharacterEnd
}

// Verify re-checks the span against the source document it was created from.
func (s Span) Verify(doc string) error {
	if s.CharacterStart < 0 || s.CharacterEnd > len(doc) || s.CharacterStart >= s.CharacterEnd {
		return fmt.Errorf("span %s offsets [%d,%d) invalid for document of length %d",
			s.FilterType, s.CharacterStart, s.CharacterEnd, len(doc))
	}
	if doc[s.CharacterStart:s.CharacterEnd] != s.Text {
		return fmt.Errorf("span %s text %q does not match document at [%d,%d)",
			s.FilterType, s.Text, s.CharacterStart, s.CharacterEnd)
	}
	return nil
}

func contextWindow(doc string, start, end int) string {
	lo := start - ContextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + ContextWindow
	if hi > len(doc) {
		hi = len(doc)
	}
	return doc[lo:hi]
}
