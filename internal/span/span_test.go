// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package span

import (
	"regexp"
	"testing"
)

func TestNew_ValidOffsets(t *testing.T) {
	doc := "Patient: John Smith was seen today."
	s, err := New(doc, 9, 19, TypeName, 0.9, PriorityDefault, "test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Text != "John Smith" {
		t.Errorf("expected text %q, got %q", "John Smith", s.Text)
	}
	if s.OriginalValue != s.Text {
		t.Errorf("original value should equal text at creation")
	}
	if err := s.Verify(doc); err != nil {
		t.Errorf("Verify failed on freshly created span: %v", err)
	}
}

func TestNew_RejectsInvalidOffsets(t *testing.T) {
	doc := "short"
	cases := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 3},
		{"end past document", 0, 10},
		{"zero length", 2, 2},
		{"inverted", 4, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(doc, tc.start, tc.end, TypeName, 0.9, PriorityDefault, "test"); err == nil {
				t.Errorf("expected error for offsets [%d,%d)", tc.start, tc.end)
			}
		})
	}
}

func TestNew_RejectsInvalidConfidence(t *testing.T) {
	doc := "some text here"
	if _, err := New(doc, 0, 4, TypeName, 1.2, PriorityDefault, "test"); err == nil {
		t.Error("expected error for confidence above 1")
	}
	if _, err := New(doc, 0, 4, TypeName, -0.1, PriorityDefault, "test"); err == nil {
		t.Error("expected error for negative confidence")
	}
}

func TestFromSubmatch(t *testing.T) {
	doc := "Pacemaker Serial: ABC1234567 implanted."
	re := regexp.MustCompile(`Serial:\s*([A-Z0-9]{6,})`)
	idx := re.FindStringSubmatchIndex(doc)
	if idx == nil {
		t.Fatal("pattern did not match fixture")
	}
	s, err := FromSubmatch(doc, idx, 1, TypeDevice, 0.95, PriorityConfirmed, "serial label")
	if err != nil {
		t.Fatalf("FromSubmatch failed: %v", err)
	}
	if s.Text != "ABC1234567" {
		t.Errorf("expected capture %q, got %q", "ABC1234567", s.Text)
	}
	if doc[s.CharacterStart:s.CharacterEnd] != s.Text {
		t.Error("span offsets do not bound the captured group")
	}
}

func TestFromSubmatch_MissingGroup(t *testing.T) {
	doc := "no captures here"
	re := regexp.MustCompile(`captures`)
	idx := re.FindStringSubmatchIndex(doc)
	if _, err := FromSubmatch(doc, idx, 1, TypeName, 0.5, PriorityLow, "x"); err == nil {
		t.Error("expected error for absent capture group")
	}
}

func TestOverlaps(t *testing.T) {
	doc := "0123456789abcdefghij"
	mk := func(start, end int) Span {
		s, err := New(doc, start, end, TypeName, 0.5, PriorityDefault, "t")
		if err != nil {
			t.Fatalf("fixture span: %v", err)
		}
		return s
	}

	cases := []struct {
		name string
		a, b Span
		want bool
	}{
		{"disjoint", mk(0, 5), mk(10, 15), false},
		{"touching is not overlap", mk(0, 5), mk(5, 10), false},
		{"partial overlap", mk(0, 6), mk(4, 10), true},
		{"containment is overlap", mk(0, 10), mk(3, 7), true},
		{"identical range", mk(2, 8), mk(2, 8), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Errorf("Overlaps not symmetric: reverse = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestContextWindow_Clamped(t *testing.T) {
	doc := "tiny"
	s, err := New(doc, 0, 4, TypeName, 0.5, PriorityDefault, "t")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Context != "tiny" {
		t.Errorf("context window should clamp to document bounds, got %q", s.Context)
	}
}

func TestIsPersonIdentity(t *testing.T) {
	if !TypeName.IsPersonIdentity() || !TypeProvider.IsPersonIdentity() {
		t.Error("NAME and PROVIDER_NAME are person identity categories")
	}
	if TypeDevice.IsPersonIdentity() {
		t.Error("DEVICE is not a person identity category")
	}
}
