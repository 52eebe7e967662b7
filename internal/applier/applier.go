// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package applier rewrites a document from a resolved redaction plan. It
// walks the text and the disjoint span list once, replaces each span with a
// typed token, and records the token -> original mapping so the rewrite is
// exactly reversible.
package applier

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"phi-redact/internal/span"

	"github.com/google/uuid"
)

// ErrOffsetMismatch indicates that a span in the final plan no longer lines
// up with the live text. The plan is supposed to arrive sorted, disjoint and
// verified; a mismatch here means an upstream logic defect, and the whole
// batch is rejected rather than emitting corrupted output.
var ErrOffsetMismatch = errors.New("applier: span offsets do not match document")

// tokenRe matches the fixed token shape emitted by Apply:
// [TYPE-n-salt], with n counting per category and salt identifying the
// document. The salt is chosen so no emitted token occurs in the source
// text, which keeps reversal exact even for documents that themselves
// contain token-shaped strings.
var tokenRe = regexp.MustCompile(`\[[A-Z_]+-\d+-[0-9a-f]{8}\]`)

// saltLen is the length of the per-document salt embedded in each token.
const saltLen = 8

// Result is the output of one application pass over a document.
type Result struct {
	RedactedText string            `json:"redacted_text"`
	TokenMap     map[string]string `json:"token_map"`
	Spans        []span.Span       `json:"spans"`
	Salt         string            `json:"salt"`
}

// Apply rewrites text according to the resolved span plan. Spans must be
// sorted by CharacterStart and pairwise disjoint; each is replaced by a
// token of the form [TYPE-n-salt]. The returned token map reverses the
// rewrite exactly.
func Apply(text string, spans []span.Span) (Result, error) {
	salt := newSalt(text)
	res := Result{
		TokenMap: make(map[string]string, len(spans)),
		Spans:    make([]span.Span, 0, len(spans)),
		Salt:     salt,
	}

	var out strings.Builder
	out.Grow(len(text))
	counters := make(map[span.FilterType]int)
	cursor := 0

	for _, s := range spans {
		if s.CharacterStart < cursor {
			return Result{}, fmt.Errorf("%w: span %s [%d,%d) starts before cursor %d",
				ErrOffsetMismatch, s.FilterType, s.CharacterStart, s.CharacterEnd, cursor)
		}
		if err := s.Verify(text); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrOffsetMismatch, err)
		}

		counters[s.FilterType]++
		token := fmt.Sprintf("[%s-%d-%s]", s.FilterType, counters[s.FilterType], salt)

		out.WriteString(text[cursor:s.CharacterStart])
		out.WriteString(token)
		cursor = s.CharacterEnd

		res.TokenMap[token] = s.OriginalValue
		s.Applied = true
		s.Replacement = token
		s.Salt = salt
		res.Spans = append(res.Spans, s)
	}
	out.WriteString(text[cursor:])

	res.RedactedText = out.String()
	return res, nil
}

// newSalt picks a per-document salt that does not already occur in a token
// position within text, so generated tokens cannot collide with document
// content.
func newSalt(text string) string {
	for {
		salt := uuid.NewString()[:saltLen]
		if !strings.Contains(text, "-"+salt+"]") {
			return salt
		}
	}
}

// Unapply reconstructs the original document from redacted text and its
// token map. Token-shaped substrings carrying this map's salt must all be
// present in the map; a miss means the map does not belong to the document.
// Token-shaped substrings with a different salt are document content and
// pass through untouched.
func Unapply(redacted string, tokenMap map[string]string) (string, error) {
	salts := make(map[string]bool, 1)
	for token := range tokenMap {
		if tokenRe.FindString(token) == token {
			salts[tokenSalt(token)] = true
		}
	}

	var missing []string
	out := tokenRe.ReplaceAllStringFunc(redacted, func(token string) string {
		if original, ok := tokenMap[token]; ok {
			return original
		}
		if salts[tokenSalt(token)] {
			missing = append(missing, token)
		}
		return token
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("applier: tokens %v not present in token map", missing)
	}
	return out, nil
}

// tokenSalt extracts the salt from a token matched by tokenRe.
func tokenSalt(token string) string {
	return token[len(token)-saltLen-1 : len(token)-1]
}
