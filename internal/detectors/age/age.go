// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package age detects ages that are themselves identifiers: Safe Harbor
// treats every age of 90 or over as PHI, so only those produce spans.
package age

import (
	"context"
	"regexp"
	"strconv"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

// Threshold is the lowest age treated as an identifier.
const Threshold = 90

var (
	phraseRe  = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:-?\s*years?\s*-?\s*old|y/?o\b|years?\s+of\s+age)`)
	labeledRe = regexp.MustCompile(`(?i)\bage\s*[:#]?\s*(\d{1,3})\b`)
)

// Over90 detects ages at or above the Safe Harbor threshold in both phrase
// form ("97-year-old", "97 yo") and labeled form ("Age: 97").
type Over90 struct {
	accel *gateway.Consultant
}

func NewOver90(accel *gateway.Consultant) *Over90 { return &Over90{accel: accel} }

func (d *Over90) Name() string          { return "age.over-90" }
func (d *Over90) Type() span.FilterType { return span.TypeAge }
func (d *Over90) Priority() int         { return span.PriorityConfirmed }

func (d *Over90) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, re := range []*regexp.Regexp{phraseRe, labeledRe} {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			age, err := strconv.Atoi(text[idx[2]:idx[3]])
			if err != nil || age < Threshold || age > 130 {
				continue
			}
			s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.95, d.Priority(), "age 90 or over")
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}
