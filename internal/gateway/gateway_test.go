// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"testing"

	"phi-redact/internal/span"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway returns canned candidates or a canned error.
type fakeGateway struct {
	cands []Candidate
	err   error
	calls int
}

func (f *fakeGateway) Detections(ctx context.Context, text, category string) ([]Candidate, error) {
	f.calls++
	return f.cands, f.err
}

func (f *fakeGateway) Available() bool { return true }

func TestConsultant_WrapsValidCandidates(t *testing.T) {
	doc := "Pacemaker Serial: ABC1234567 implanted."
	gw := &fakeGateway{cands: []Candidate{
		{Text: "ABC1234567", CharacterStart: 18, CharacterEnd: 28, Confidence: 0.95, Pattern: "Device with serial/ID"},
	}}

	c := NewConsultant(gw, 0)
	spans := c.Spans(context.Background(), doc, span.TypeDevice, span.PriorityHigh)

	require.Len(t, spans, 1)
	assert.Equal(t, "ABC1234567", spans[0].Text)
	assert.Equal(t, span.TypeDevice, spans[0].FilterType)
	assert.Equal(t, "Device with serial/ID", spans[0].Pattern)
}

func TestConsultant_RejectsOutOfBoundsOffsets(t *testing.T) {
	doc := "short document"
	gw := &fakeGateway{cands: []Candidate{
		{Text: "ghost", CharacterStart: 100, CharacterEnd: 105, Confidence: 0.9},
	}}

	c := NewConsultant(gw, 0)
	assert.Nil(t, c.Spans(context.Background(), doc, span.TypeName, span.PriorityDefault),
		"out-of-bounds candidates must not survive validation")
}

func TestConsultant_RejectsTextMismatch(t *testing.T) {
	doc := "Patient: John Smith seen today."
	gw := &fakeGateway{cands: []Candidate{
		{Text: "Jane Jones", CharacterStart: 9, CharacterEnd: 19, Confidence: 0.9},
	}}

	c := NewConsultant(gw, 0)
	assert.Nil(t, c.Spans(context.Background(), doc, span.TypeName, span.PriorityDefault))
}

func TestConsultant_ErrorMeansFallback(t *testing.T) {
	gw := &fakeGateway{err: fmt.Errorf("backend down")}
	c := NewConsultant(gw, 0)
	assert.Nil(t, c.Spans(context.Background(), "any text", span.TypeName, span.PriorityDefault))
}

func TestConsultant_NilGateway(t *testing.T) {
	c := NewConsultant(nil, 0)
	assert.Nil(t, c.Spans(context.Background(), "any text", span.TypeName, span.PriorityDefault))

	var nilConsultant *Consultant
	assert.Nil(t, nilConsultant.Spans(context.Background(), "any text", span.TypeName, span.PriorityDefault))
}

func TestDisabledGateway(t *testing.T) {
	var d Disabled
	assert.False(t, d.Available())
	cands, err := d.Detections(context.Background(), "text", "NAME")
	assert.NoError(t, err)
	assert.Nil(t, cands)
}

func TestConsultant_ClampsConfidence(t *testing.T) {
	doc := "ID 12345 on file."
	gw := &fakeGateway{cands: []Candidate{
		{CharacterStart: 3, CharacterEnd: 8, Confidence: 1.7, Pattern: "id"},
	}}

	c := NewConsultant(gw, 0)
	spans := c.Spans(context.Background(), doc, span.TypeUniqueID, span.PriorityDefault)
	require.Len(t, spans, 1)
	assert.Equal(t, 1.0, spans[0].Confidence)
}
