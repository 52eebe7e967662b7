// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package roles classifies whether a detected person name belongs to a
// patient or a clinician. Every name-producing detector consults this one
// classifier so the NAME / PROVIDER_NAME distinction has a single source of
// truth instead of competing per-detector heuristics.
package roles

import (
	"regexp"
	"strings"
)

// Role is the classification outcome for a person name.
type Role int

const (
	Unknown Role = iota
	Patient
	Provider
)

func (r Role) String() string {
	switch r {
	case Patient:
		return "PATIENT"
	case Provider:
		return "PROVIDER"
	default:
		return "UNKNOWN"
	}
}

// Result carries the classification and the text evidence that produced it.
type Result struct {
	Role     Role
	Evidence string
}

var (
	// Honorifics and clinical titles immediately before a name.
	providerPrefixRe = regexp.MustCompile(`(?i)\b(Dr|Doctor|Prof|Professor|PA|NP|RN|LPN|CRNA|DDS|Nurse)\.?\s*$`)

	// Credential suffixes immediately after a name.
	providerSuffixRe = regexp.MustCompile(`(?i)^\s*,?\s*(MD|DO|PhD|PA-C|NP|RN|APRN|CRNA|DDS|DPM|FACS|FACP)\b`)

	// Role labels earlier on the line.
	providerLabelRe = regexp.MustCompile(`(?i)\b(attending|physician|surgeon|provider|referring|ordering|consulting|signed\s+by|dictated\s+by|seen\s+by|nurse|therapist)\b`)
	patientLabelRe  = regexp.MustCompile(`(?i)\b(patient|pt|subject|client|resident|member|insured|guarantor)\b\s*(name)?\s*[:#]?`)
)

const evidenceRadius = 30

// Classify determines the role of the name at [start,end) within text,
// returning the role and the evidence window that decided it. Prefix and
// suffix credentials outrank line labels; with no evidence either way the
// result is Unknown.
func Classify(text string, start, end int) Result {
	before := text[maxInt(0, start-evidenceRadius):start]
	after := text[end:minInt(len(text), end+evidenceRadius)]

	if m := providerPrefixRe.FindString(before); m != "" {
		return Result{Role: Provider, Evidence: strings.TrimSpace(m)}
	}
	if m := providerSuffixRe.FindString(after); m != "" {
		return Result{Role: Provider, Evidence: strings.TrimSpace(strings.Trim(m, " ,"))}
	}

	line := lineAround(text, start, end)
	if m := providerLabelRe.FindString(line[:minInt(len(line), start-lineStart(text, start))]); m != "" {
		return Result{Role: Provider, Evidence: strings.TrimSpace(m)}
	}
	if m := patientLabelRe.FindString(before); m != "" {
		return Result{Role: Patient, Evidence: strings.TrimSpace(m)}
	}
	if m := patientLabelRe.FindString(line); m != "" {
		return Result{Role: Patient, Evidence: strings.TrimSpace(m)}
	}
	return Result{Role: Unknown}
}

func lineStart(text string, pos int) int {
	return strings.LastIndexByte(text[:pos], '\n') + 1
}

func lineAround(text string, start, end int) string {
	lo := lineStart(text, start)
	hi := strings.IndexByte(text[end:], '\n')
	if hi < 0 {
		hi = len(text)
	} else {
		hi += end
	}
	return text[lo:hi]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
