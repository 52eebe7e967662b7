// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package address detects physical addresses: street addresses, ZIP codes,
// and named hospitals. Bare five-digit numbers are only ZIP codes when the
// surrounding text looks like an address, so the ZIP detector requires
// nearby address evidence.
package address

import (
	"context"
	"regexp"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

var (
	streetRe   = regexp.MustCompile(`\b\d{1,5}\s+(?:[A-Z][a-z]+\s+){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Court|Ct|Way|Place|Pl|Circle|Cir)\.?\b`)
	zipRe      = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	stateRe    = regexp.MustCompile(`\b(?:A[LKZR]|C[AOT]|D[EC]|FL|GA|HI|I[DLNA]|K[SY]|LA|M[EDAINSOT]|N[EVHJMYCD]|O[HKR]|PA|RI|S[CD]|T[NX]|UT|V[TA]|W[AVIY])\b`)
	hospitalRe = regexp.MustCompile(`\b(?:[A-Z][a-z]+\s+){1,3}(?:Hospital|Medical\s+Center|Clinic|Health\s+System|Infirmary)\b`)
)

var addressKeywords = []string{"address", "street", "ave", "road", "blvd", "suite", "apt"}

// Street detects numbered street addresses.
type Street struct {
	accel *gateway.Consultant
}

func NewStreet(accel *gateway.Consultant) *Street { return &Street{accel: accel} }

func (d *Street) Name() string          { return "address.street" }
func (d *Street) Type() span.FilterType { return span.TypeAddress }
func (d *Street) Priority() int         { return span.PriorityHigh }

func (d *Street) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range streetRe.FindAllStringIndex(text, -1) {
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.9, d.Priority(), "street address")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Zip detects ZIP codes confirmed by a nearby state abbreviation or address
// vocabulary.
type Zip struct {
	accel *gateway.Consultant
}

func NewZip(accel *gateway.Consultant) *Zip { return &Zip{accel: accel} }

func (d *Zip) Name() string          { return "address.zip" }
func (d *Zip) Type() span.FilterType { return span.TypeZipcode }
func (d *Zip) Priority() int         { return span.PriorityDefault }

func (d *Zip) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range zipRe.FindAllStringIndex(text, -1) {
		lo := loc[0] - 12
		if lo < 0 {
			lo = 0
		}
		if !stateRe.MatchString(text[lo:loc[0]]) &&
			!detector.HasKeywordNear(text, loc[0], loc[1], 30, addressKeywords) {
			continue
		}
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.75, d.Priority(), "ZIP code")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Hospital detects named hospitals and medical centers. The name of the
// treating facility is geographic PHI; the same vocabulary also feeds the
// suppression side, keeping a person's name inside a hospital name from
// being redacted twice under two categories.
type Hospital struct {
	accel *gateway.Consultant
}

func NewHospital(accel *gateway.Consultant) *Hospital { return &Hospital{accel: accel} }

func (d *Hospital) Name() string          { return "address.hospital" }
func (d *Hospital) Type() span.FilterType { return span.TypeHospital }
func (d *Hospital) Priority() int         { return span.PriorityHigh }

func (d *Hospital) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range hospitalRe.FindAllStringIndex(text, -1) {
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.85, d.Priority(), "named facility")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
