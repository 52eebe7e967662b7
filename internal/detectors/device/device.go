// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package device detects implanted-device serial numbers and vehicle
// identifiers. Device serials are the category the accelerated backend
// covers best, but the local cascade carries the full pattern set so the
// two tiers find the same spans when the backend is down.
package device

import (
	"context"
	"regexp"
	"strings"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

var (
	serialRe = regexp.MustCompile(`(?i)\b(?:pacemaker|defibrillator|implant|stimulator|prosthesis|insulin\s+pump|device)\s*(?:serial|model|lot|id)?\s*(?:number|no\.?|#)?\s*[:#]?\s*([A-Z0-9][A-Z0-9-]{4,14})\b`)
	vinRe    = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	plateRe  = regexp.MustCompile(`(?i)\b(?:license\s+plate|plate)\s*(?:number|no\.?|#)?\s*[:#]?\s*([A-Z0-9-]{2,8})\b`)
)

// Serial detects device serial numbers behind an implant vocabulary label,
// e.g. "Pacemaker Serial: ABC1234567".
type Serial struct {
	accel *gateway.Consultant
}

func NewSerial(accel *gateway.Consultant) *Serial { return &Serial{accel: accel} }

func (d *Serial) Name() string          { return "device.serial" }
func (d *Serial) Type() span.FilterType { return span.TypeDevice }
func (d *Serial) Priority() int         { return span.PriorityConfirmed }

func (d *Serial) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range serialRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.9, d.Priority(), "labeled device serial")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Vehicle detects VINs and labeled license plates.
type Vehicle struct {
	accel *gateway.Consultant
}

func NewVehicle(accel *gateway.Consultant) *Vehicle { return &Vehicle{accel: accel} }

func (d *Vehicle) Name() string          { return "device.vehicle" }
func (d *Vehicle) Type() span.FilterType { return span.TypeVehicle }
func (d *Vehicle) Priority() int         { return 90 }

func (d *Vehicle) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range vinRe.FindAllStringIndex(text, -1) {
		if !mixedAlphanumeric(text[loc[0]:loc[1]]) {
			continue
		}
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.8, d.Priority(), "VIN shape")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	for _, idx := range plateRe.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.Type(), 0.85, span.PriorityConfirmed, "labeled license plate")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func mixedAlphanumeric(s string) bool {
	return strings.ContainsAny(s, "0123456789") &&
		strings.ContainsAny(s, "ABCDEFGHJKLMNPRSTUVWXYZ")
}
