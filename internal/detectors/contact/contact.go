// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package contact detects telecommunication identifiers: phone and fax
// numbers, email addresses, URLs, and IP addresses. Phone and fax share the
// same numeric shape; a fax keyword near the match routes it to the FAX
// category at a higher priority so the overlap resolves to the labeled
// reading.
package contact

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

var (
	phoneRe = regexp.MustCompile(`\(?\b\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`)
	emailRe = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	urlRe   = regexp.MustCompile(`\bhttps?://[^\s<>"]+|www\.[^\s<>"]+\b`)
	ipRe    = regexp.MustCompile(`\b(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})\b`)
)

var faxKeywords = []string{"fax", "facsimile"}

// Phone detects North American phone numbers, leaving fax-labeled numbers
// to the Fax detector.
type Phone struct {
	accel *gateway.Consultant
}

func NewPhone(accel *gateway.Consultant) *Phone { return &Phone{accel: accel} }

func (d *Phone) Name() string          { return "contact.phone" }
func (d *Phone) Type() span.FilterType { return span.TypePhone }
func (d *Phone) Priority() int         { return 90 }

func (d *Phone) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range phoneRe.FindAllStringIndex(text, -1) {
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.85, d.Priority(), "phone number")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Fax detects phone-shaped numbers with a fax keyword nearby.
type Fax struct {
	accel *gateway.Consultant
}

func NewFax(accel *gateway.Consultant) *Fax { return &Fax{accel: accel} }

func (d *Fax) Name() string          { return "contact.fax" }
func (d *Fax) Type() span.FilterType { return span.TypeFax }
func (d *Fax) Priority() int         { return span.PriorityHigh }

func (d *Fax) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range phoneRe.FindAllStringIndex(text, -1) {
		if !detector.HasKeywordNear(text, loc[0], loc[1], 20, faxKeywords) {
			continue
		}
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.9, d.Priority(), "fax number")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Email detects email addresses.
type Email struct {
	accel *gateway.Consultant
}

func NewEmail(accel *gateway.Consultant) *Email { return &Email{accel: accel} }

func (d *Email) Name() string          { return "contact.email" }
func (d *Email) Type() span.FilterType { return span.TypeEmail }
func (d *Email) Priority() int         { return span.PriorityHigh }

func (d *Email) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.95, d.Priority(), "email address")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// URL detects web addresses.
type URL struct {
	accel *gateway.Consultant
}

func NewURL(accel *gateway.Consultant) *URL { return &URL{accel: accel} }

func (d *URL) Name() string          { return "contact.url" }
func (d *URL) Type() span.FilterType { return span.TypeURL }
func (d *URL) Priority() int         { return 90 }

func (d *URL) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		end := loc[1]
		// Trailing sentence punctuation is not part of the address.
		for end > loc[0] && strings.ContainsRune(".,;:!?)", rune(text[end-1])) {
			end--
		}
		if end <= loc[0] {
			continue
		}
		s, err := span.New(text, loc[0], end, d.Type(), 0.9, d.Priority(), "URL")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// IP detects dotted-quad IPv4 addresses with valid octets.
type IP struct {
	accel *gateway.Consultant
}

func NewIP(accel *gateway.Consultant) *IP { return &IP{accel: accel} }

func (d *IP) Name() string          { return "contact.ip" }
func (d *IP) Type() span.FilterType { return span.TypeIP }
func (d *IP) Priority() int         { return 90 }

func (d *IP) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range ipRe.FindAllStringSubmatchIndex(text, -1) {
		if !validOctets(text, idx) {
			continue
		}
		s, err := span.FromSubmatch(text, idx, 0, d.Type(), 0.85, d.Priority(), "IPv4 address")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func validOctets(text string, idx []int) bool {
	for g := 1; g <= 4; g++ {
		n, err := strconv.Atoi(text[idx[2*g]:idx[2*g+1]])
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}
