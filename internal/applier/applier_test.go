// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package applier

import (
	"fmt"
	"testing"

	"phi-redact/internal/span"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpan(t *testing.T, doc string, start, end int, ft span.FilterType) span.Span {
	t.Helper()
	s, err := span.New(doc, start, end, ft, 0.9, span.PriorityHigh, "test pattern")
	require.NoError(t, err)
	return s
}

func token(res Result, ft span.FilterType, n int) string {
	return fmt.Sprintf("[%s-%d-%s]", ft, n, res.Salt)
}

func TestApply_ReplacesSpansWithTypedTokens(t *testing.T) {
	doc := "Patient John Smith, MRN 12345678, seen 1/2/2020."
	spans := []span.Span{
		mustSpan(t, doc, 8, 18, span.TypeName),
		mustSpan(t, doc, 24, 32, span.TypeMRN),
		mustSpan(t, doc, 39, 47, span.TypeDate),
	}

	res, err := Apply(doc, spans)
	require.NoError(t, err)
	require.Len(t, res.Salt, saltLen)

	want := fmt.Sprintf("Patient %s, MRN %s, seen %s.",
		token(res, span.TypeName, 1), token(res, span.TypeMRN, 1), token(res, span.TypeDate, 1))
	assert.Equal(t, want, res.RedactedText)
	assert.Equal(t, "John Smith", res.TokenMap[token(res, span.TypeName, 1)])
	assert.Equal(t, "12345678", res.TokenMap[token(res, span.TypeMRN, 1)])
	assert.Equal(t, "1/2/2020", res.TokenMap[token(res, span.TypeDate, 1)])

	for _, s := range res.Spans {
		assert.True(t, s.Applied)
		assert.NotEmpty(t, s.Replacement)
		assert.Equal(t, res.Salt, s.Salt)
	}
}

func TestApply_CountersArePerCategory(t *testing.T) {
	doc := "John Smith met Jane Doe on 1/2/2020"
	spans := []span.Span{
		mustSpan(t, doc, 0, 10, span.TypeName),
		mustSpan(t, doc, 15, 23, span.TypeName),
		mustSpan(t, doc, 27, 35, span.TypeDate),
	}

	res, err := Apply(doc, spans)
	require.NoError(t, err)
	want := fmt.Sprintf("%s met %s on %s",
		token(res, span.TypeName, 1), token(res, span.TypeName, 2), token(res, span.TypeDate, 1))
	assert.Equal(t, want, res.RedactedText)
}

func TestApply_RoundTrip(t *testing.T) {
	doc := "Patient: John Smith, DOB 1/1/1930. Dr. Jane Doe, MD saw the patient."
	spans := []span.Span{
		mustSpan(t, doc, 9, 19, span.TypeName),
		mustSpan(t, doc, 25, 33, span.TypeDate),
		mustSpan(t, doc, 39, 47, span.TypeProvider),
	}

	res, err := Apply(doc, spans)
	require.NoError(t, err)
	require.NotEqual(t, doc, res.RedactedText)

	original, err := Unapply(res.RedactedText, res.TokenMap)
	require.NoError(t, err)
	assert.Equal(t, doc, original)
}

func TestApply_RoundTripWithTokenShapedDocumentText(t *testing.T) {
	// A document that itself contains token-shaped strings must still
	// reverse exactly; the literal text is content, not a token.
	doc := "Template field [NAME-1] applies. Patient John Smith admitted. See [NAME-1-deadbeef] too."
	spans := []span.Span{
		mustSpan(t, doc, 41, 51, span.TypeName),
	}
	require.Equal(t, "John Smith", doc[41:51])

	res, err := Apply(doc, spans)
	require.NoError(t, err)
	assert.Contains(t, res.RedactedText, "[NAME-1] applies")
	assert.Contains(t, res.RedactedText, "[NAME-1-deadbeef]")
	assert.NotContains(t, res.RedactedText, "John Smith")

	original, err := Unapply(res.RedactedText, res.TokenMap)
	require.NoError(t, err)
	assert.Equal(t, doc, original)
}

func TestApply_NoSpansIsIdentity(t *testing.T) {
	doc := "No identifiers here."
	res, err := Apply(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, res.RedactedText)
	assert.Empty(t, res.TokenMap)

	original, err := Unapply(res.RedactedText, res.TokenMap)
	require.NoError(t, err)
	assert.Equal(t, doc, original)
}

func TestApply_RejectsOverlappingPlan(t *testing.T) {
	doc := "John Smithsonian visited"
	spans := []span.Span{
		mustSpan(t, doc, 0, 10, span.TypeName),
		mustSpan(t, doc, 5, 16, span.TypeName),
	}

	_, err := Apply(doc, spans)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOffsetMismatch)
}

func TestApply_RejectsStaleSpan(t *testing.T) {
	doc := "Patient John Smith admitted"
	s := mustSpan(t, doc, 8, 18, span.TypeName)
	s.Text = "Jane Jones"

	_, err := Apply(doc, []span.Span{s})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOffsetMismatch)
}

func TestApply_RejectsOutOfBoundsSpan(t *testing.T) {
	doc := "short"
	s := mustSpan(t, doc, 0, 5, span.TypeName)
	s.CharacterEnd = 50

	_, err := Apply(doc, []span.Span{s})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOffsetMismatch)
}

func TestUnapply_MissingSaltedTokenFails(t *testing.T) {
	// The map's salt identifies its document; a token carrying that salt
	// but absent from the map means the map is incomplete for this text.
	_, err := Unapply("Patient [NAME-1-0a1b2c3d] seen", map[string]string{"[NAME-2-0a1b2c3d]": "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[NAME-1-0a1b2c3d]")
}

func TestUnapply_ForeignSaltPassesThrough(t *testing.T) {
	// A token-shaped string with a different salt is document content.
	out, err := Unapply("Keep [NAME-1-deadbeef] as is", map[string]string{"[NAME-1-0a1b2c3d]": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "Keep [NAME-1-deadbeef] as is", out)
}
