// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package date

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

func TestNumeric_DetectsSlashDashAndISO(t *testing.T) {
	for _, tt := range []struct{ doc, want string }{
		{"Seen 1/2/2020 in clinic.", "1/2/2020"},
		{"Seen 01-02-20 in clinic.", "01-02-20"},
		{"Admitted 2020-01-02 overnight.", "2020-01-02"},
	} {
		spans := detect(t, NewNumeric(noAccel()), tt.doc)
		require.Len(t, spans, 1, "doc: %s", tt.doc)
		assert.Equal(t, tt.want, spans[0].Text)
	}
}

func TestWritten_DetectsMonthNameDates(t *testing.T) {
	spans := detect(t, NewWritten(noAccel()), "Surgery on January 5, 1994 went well.")
	require.Len(t, spans, 1)
	assert.Equal(t, "January 5, 1994", spans[0].Text)
}

func TestBirthDate_LabeledDateOutranksNumeric(t *testing.T) {
	doc := "Patient DOB: 1/1/1930, follow-up 3/4/2021."
	dob := detect(t, NewBirthDate(noAccel()), doc)
	require.Len(t, dob, 1)
	assert.Equal(t, "1/1/1930", dob[0].Text)
	assert.Equal(t, span.PriorityConfirmed, dob[0].Priority)

	numeric := detect(t, NewNumeric(noAccel()), doc)
	require.Len(t, numeric, 2)
	assert.Greater(t, dob[0].Priority, numeric[0].Priority)
}
