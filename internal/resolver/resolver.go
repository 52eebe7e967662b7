// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver merges the overlapping, contradictory span claims from
// every detector into one non-overlapping redaction plan. The algorithm is
// deterministic and independent of detector arrival order: every tie-break
// chain ends in detector registration order, never "first to finish".
package resolver

import (
	"errors"
	"fmt"
	"sort"

	"phi-redact/internal/span"
)

// ErrOverlapInvariant indicates the resolver produced overlapping final
// spans. This is a logic defect, not a data gap, and it aborts the document:
// corrupt redaction is worse than loud failure.
var ErrOverlapInvariant = errors.New("resolver produced overlapping final spans")

// Resolve takes the unordered multiset of spans from all detectors over one
// document and returns the cluster winners: a start-ascending, pairwise
// disjoint list of spans to redact. Losing spans are marked Ignored and
// recorded on their winner's AmbiguousWith for the audit trail.
//
// Winner selection within a cluster is priority, then confidence, then
// range length, then detector registration order. Priority is the primary
// signal: it encodes contextual confirmation strength, so a
// comma-structured "Last, First" match at 150 beats a bare ALL-CAPS guess
// at 75 regardless of confidence.
func Resolve(spans []span.Span) ([]span.Span, error) {
	if len(spans) == 0 {
		return nil, nil
	}

	// Work on a copy; input spans belong to the detectors.
	work := make([]span.Span, len(spans))
	copy(work, spans)
	for i := range work {
		work[i].Ignored = false
		work[i].AmbiguousWith = nil
	}

	unique := collapseDuplicates(work)

	// Sort by start ascending, end descending, so a containing span always
	// precedes its contained spans and the sweep sees clusters contiguously.
	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].CharacterStart != unique[j].CharacterStart {
			return unique[i].CharacterStart < unique[j].CharacterStart
		}
		return unique[i].CharacterEnd > unique[j].CharacterEnd
	})

	var winners []span.Span
	for start := 0; start < len(unique); {
		// Grow the cluster while the next span intersects the cluster's
		// reach. Touching boundaries (end == start) do not intersect;
		// containment does.
		end := start + 1
		reach := unique[start].CharacterEnd
		for end < len(unique) && unique[end].CharacterStart < reach {
			if unique[end].CharacterEnd > reach {
				reach = unique[end].CharacterEnd
			}
			end++
		}
		winners = append(winners, selectWinner(unique[start:end]))
		start = end
	}

	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].CharacterStart < winners[j].CharacterStart
	})

	// Non-overlap is guaranteed by construction; verify anyway, because a
	// violation here means corrupted redaction downstream.
	for i := 1; i < len(winners); i++ {
		if winners[i-1].CharacterEnd > winners[i].CharacterStart {
			return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlapInvariant,
				winners[i-1].CharacterStart, winners[i-1].CharacterEnd,
				winners[i].CharacterStart, winners[i].CharacterEnd)
		}
	}
	return winners, nil
}

// collapseDuplicates merges spans with identical character ranges,
// keeping the higher priority, then higher confidence, then the first seen.
// Discarded duplicates land on the keeper's AmbiguousWith.
func collapseDuplicates(work []span.Span) []span.Span {
	type key struct{ start, end int }
	keeperAt := make(map[key]int)
	var unique []span.Span

	for _, s := range work {
		k := key{s.CharacterStart, s.CharacterEnd}
		at, seen := keeperAt[k]
		if !seen {
			keeperAt[k] = len(unique)
			unique = append(unique, s)
			continue
		}
		keeper := &unique[at]
		if duplicateBeats(s, *keeper) {
			loser := *keeper
			loser.Ignored = true
			s.AmbiguousWith = append(s.AmbiguousWith, keeper.AmbiguousWith...)
			s.AmbiguousWith = append(s.AmbiguousWith, loser)
			// Strip the audit list from the recorded loser copy to keep the
			// trail one level deep.
			s.AmbiguousWith[len(s.AmbiguousWith)-1].AmbiguousWith = nil
			*keeper = s
		} else {
			s.Ignored = true
			s.AmbiguousWith = nil
			keeper.AmbiguousWith = append(keeper.AmbiguousWith, s)
		}
	}
	return unique
}

// duplicateBeats reports whether challenger replaces incumbent for an
// identical range: higher priority first, then higher confidence.
// First-seen order wins a full tie, so a later equal span never replaces.
func duplicateBeats(challenger, incumbent span.Span) bool {
	if challenger.Priority != incumbent.Priority {
		return challenger.Priority > incumbent.Priority
	}
	return challenger.Confidence > incumbent.Confidence
}

// selectWinner picks exactly one span from a cluster of mutually
// overlapping spans and records the losers on its AmbiguousWith.
func selectWinner(cluster []span.Span) span.Span {
	best := 0
	for i := 1; i < len(cluster); i++ {
		if clusterBeats(cluster[i], cluster[best]) {
			best = i
		}
	}

	winner := cluster[best]
	for i, s := range cluster {
		if i == best {
			continue
		}
		s.Ignored = true
		// A loser that collapsed duplicates earlier carries them on its own
		// AmbiguousWith; hoist those onto the winner so the audit trail
		// keeps every discarded claim, then flatten the loser itself.
		nested := s.AmbiguousWith
		s.AmbiguousWith = nil
		winner.AmbiguousWith = append(winner.AmbiguousWith, nested...)
		winner.AmbiguousWith = append(winner.AmbiguousWith, s)

		// Category coherence: a NAME / PROVIDER_NAME conflict is resolved by
		// the ordinary tie-break chain, but the winner keeps its own
		// category and the competing claim stays on the audit trail — a
		// provider is never silently relabeled as a patient or vice versa.
		if winner.FilterType.IsPersonIdentity() && s.FilterType.IsPersonIdentity() &&
			winner.FilterType != s.FilterType {
			winner.DisambiguationScore = float64(winner.Priority-s.Priority) + (winner.Confidence - s.Confidence)
		}
	}
	return winner
}

// clusterBeats is the total order over cluster members: priority,
// confidence, range length, then detector registration order. The chain is
// total so resolution never depends on goroutine scheduling.
func clusterBeats(challenger, incumbent span.Span) bool {
	if challenger.Priority != incumbent.Priority {
		return challenger.Priority > incumbent.Priority
	}
	if challenger.Confidence != incumbent.Confidence {
		return challenger.Confidence > incumbent.Confidence
	}
	if challenger.Length() != incumbent.Length() {
		return challenger.Length() > incumbent.Length()
	}
	return challenger.DetectorOrder < incumbent.DetectorOrder
}
