// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package contact

import (
	"context"
	"testing"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noAccel() *gateway.Consultant {
	return gateway.NewConsultant(gateway.Disabled{}, 0)
}

func detect(t *testing.T, d detector.Detector, doc string) []span.Span {
	t.Helper()
	spans, err := d.Detect(context.Background(), doc, detector.NewDocContext(doc))
	require.NoError(t, err)
	return spans
}

func TestPhone_DetectsCommonFormats(t *testing.T) {
	for _, doc := range []string{
		"Call (555) 123-4567 to reschedule.",
		"Call 555-123-4567 to reschedule.",
		"Call 555.123.4567 to reschedule.",
	} {
		spans := detect(t, NewPhone(noAccel()), doc)
		require.Len(t, spans, 1, "doc: %s", doc)
		assert.Equal(t, span.TypePhone, spans[0].FilterType)
	}
}

func TestFax_RequiresFaxKeyword(t *testing.T) {
	spans := detect(t, NewFax(noAccel()), "Fax: 555-123-4567")
	require.Len(t, spans, 1)
	assert.Equal(t, span.TypeFax, spans[0].FilterType)
	assert.Equal(t, "555-123-4567", spans[0].Text)

	assert.Empty(t, detect(t, NewFax(noAccel()), "Call 555-123-4567 to reschedule."))
}

func TestFax_OutranksPhoneOnSameNumber(t *testing.T) {
	assert.Greater(t, NewFax(noAccel()).Priority(), NewPhone(noAccel()).Priority(),
		"a fax-labeled number must win the overlap against the generic phone reading")
}

func TestEmail_Detects(t *testing.T) {
	spans := detect(t, NewEmail(noAccel()), "Contact jsmith@example.org with results.")
	require.Len(t, spans, 1)
	assert.Equal(t, "jsmith@example.org", spans[0].Text)
}

func TestURL_TrimsTrailingPunctuation(t *testing.T) {
	spans := detect(t, NewURL(noAccel()), "See https://portal.example.org/visit.")
	require.Len(t, spans, 1)
	assert.Equal(t, "https://portal.example.org/visit", spans[0].Text)
}

func TestIP_ValidatesOctets(t *testing.T) {
	spans := detect(t, NewIP(noAccel()), "Logged in from 192.168.10.44 yesterday.")
	require.Len(t, spans, 1)
	assert.Equal(t, "192.168.10.44", spans[0].Text)

	assert.Empty(t, detect(t, NewIP(noAccel()), "Version 999.300.1.1 of the build."))
}
