// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"context"
	"errors"
	"testing"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyGateway struct{}

func (emptyGateway) Detections(ctx context.Context, text, category string) ([]gateway.Candidate, error) {
	return nil, nil
}
func (emptyGateway) Available() bool { return true }

type failingGateway struct{}

func (failingGateway) Detections(ctx context.Context, text, category string) ([]gateway.Candidate, error) {
	return nil, errors.New("backend unreachable")
}
func (failingGateway) Available() bool { return true }

func TestSerial_LocalFallbackWhenGatewayEmpty(t *testing.T) {
	doc := "Pacemaker Serial: ABC1234567"
	d := NewSerial(gateway.NewConsultant(emptyGateway{}, 0))

	spans, err := d.Detect(context.Background(), doc, detector.NewDocContext(doc))
	require.NoError(t, err)
	require.Len(t, spans, 1)

	assert.Equal(t, span.TypeDevice, spans[0].FilterType)
	assert.Equal(t, "ABC1234567", spans[0].Text)
	assert.Equal(t, 18, spans[0].CharacterStart)
	assert.Equal(t, 28, spans[0].CharacterEnd)
}

func TestSerial_LocalFallbackWhenGatewayFails(t *testing.T) {
	doc := "Defibrillator serial number 9921-AA-301 checked at interrogation."
	d := NewSerial(gateway.NewConsultant(failingGateway{}, 0))

	spans, err := d.Detect(context.Background(), doc, detector.NewDocContext(doc))
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "9921-AA-301", spans[0].Text)
}

func TestSerial_AcceleratedTierWins(t *testing.T) {
	doc := "Pacemaker Serial: ABC1234567"
	gw := &cannedGateway{candidates: []gateway.Candidate{
		{CharacterStart: 18, CharacterEnd: 28, Confidence: 0.99, Pattern: "native scan"},
	}}
	d := NewSerial(gateway.NewConsultant(gw, 0))

	spans, err := d.Detect(context.Background(), doc, detector.NewDocContext(doc))
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "native scan", spans[0].Pattern)
	assert.Equal(t, "ABC1234567", spans[0].Text)
}

type cannedGateway struct {
	candidates []gateway.Candidate
}

func (g *cannedGateway) Detections(ctx context.Context, text, category string) ([]gateway.Candidate, error) {
	return g.candidates, nil
}
func (g *cannedGateway) Available() bool { return true }

func TestVehicle_DetectsVIN(t *testing.T) {
	doc := "Arrived by private vehicle, VIN 1HGBH41JXMN109186."
	d := NewVehicle(gateway.NewConsultant(gateway.Disabled{}, 0))

	spans, err := d.Detect(context.Background(), doc, detector.NewDocContext(doc))
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "1HGBH41JXMN109186", spans[0].Text)
	assert.Equal(t, span.TypeVehicle, spans[0].FilterType)
}

func TestVehicle_IgnoresAllLetterRuns(t *testing.T) {
	doc := "DOCUMENTATIONREVIEW completed without findings."
	d := NewVehicle(gateway.NewConsultant(gateway.Disabled{}, 0))

	spans, err := d.Detect(context.Background(), doc, detector.NewDocContext(doc))
	require.NoError(t, err)
	assert.Empty(t, spans)
}
