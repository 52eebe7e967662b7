// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package chaos estimates OCR quality for a document. Degraded scans
// substitute digits for letters, scatter case, and break spacing; detectors
// use the chaos score to relax their confidence thresholds so PHI in noisy
// documents is not silently missed.
package chaos

import (
	"math"
	"strings"
	"unicode"
)

// Quality labels, from clean text to heavily corrupted OCR output.
const (
	QualityClean    = "CLEAN"
	QualityNoisy    = "NOISY"
	QualityDegraded = "DEGRADED"
	QualityChaotic  = "CHAOTIC"
)

// Indicators are the individual corruption signals that feed the overall
// chaos score.
type Indicators struct {
	// DigitSubstitutions measures digit-for-letter swaps (0→O, 1→l, 5→S)
	// inside otherwise alphabetic words.
	DigitSubstitutions float64 `json:"digit_substitutions"`

	// CaseChaos measures mIxEd CaSe inconsistency inside words.
	CaseChaos float64 `json:"case_chaos"`

	// SpacingAnomalies measures runs of extra whitespace and single
	// characters stranded between spaces.
	SpacingAnomalies float64 `json:"spacing_anomalies"`
}

// Analysis is the per-document quality assessment, computed once and shared
// through the document context.
type Analysis struct {
	// Score is the overall chaos estimate, 0.0 (clean) to 1.0 (unreadable).
	Score float64 `json:"score"`

	// Entropy is the Shannon entropy of the character distribution in bits.
	Entropy float64 `json:"entropy"`

	Indicators Indicators `json:"indicators"`

	// RecommendedThreshold is the confidence floor detectors should apply
	// for this document. Clean documents keep a strict floor; chaotic ones
	// get a permissive floor so corrupted PHI still surfaces.
	RecommendedThreshold float64 `json:"recommended_threshold"`

	// Quality is the human-readable assessment.
	Quality string `json:"quality"`
}

// Base and floor for the sigmoid-mapped threshold.
const (
	strictThreshold     = 0.75
	permissiveThreshold = 0.45
)

// Analyze estimates OCR quality for one document.
func Analyze(text string) Analysis {
	if strings.TrimSpace(text) == "" {
		return Analysis{Quality: QualityClean, RecommendedThreshold: strictThreshold}
	}

	ind := Indicators{
		DigitSubstitutions: digitSubstitutionRate(text),
		CaseChaos:          caseChaosRate(text),
		SpacingAnomalies:   spacingAnomalyRate(text),
	}

	// Empirical weights: digit substitution is the strongest OCR signal,
	// spacing the weakest.
	score := 0.45*ind.DigitSubstitutions + 0.35*ind.CaseChaos + 0.20*ind.SpacingAnomalies
	if score > 1 {
		score = 1
	}

	// Sigmoid mapping keeps the threshold stable for clean documents and
	// drops it smoothly as corruption rises.
	sig := 1.0 / (1.0 + math.Exp(-10*(score-0.35)))
	threshold := strictThreshold - (strictThreshold-permissiveThreshold)*sig

	return Analysis{
		Score:                score,
		Entropy:              shannonEntropy(text),
		Indicators:           ind,
		RecommendedThreshold: threshold,
		Quality:              qualityLabel(score),
	}
}

func qualityLabel(score float64) string {
	switch {
	case score < 0.15:
		return QualityClean
	case score < 0.35:
		return QualityNoisy
	case score < 0.6:
		return QualityDegraded
	default:
		return QualityChaotic
	}
}

// shannonEntropy computes H = -sum(p_i * log2(p_i)) over the character
// distribution.
func shannonEntropy(text string) float64 {
	freq := make(map[rune]int)
	total := 0
	for _, r := range text {
		freq[r]++
		total++
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, n := range freq {
		p := float64(n) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// digitSubstitutionRate is the fraction of alphabetic-looking words that
// embed substitution-prone digits (0, 1, 5, 8) among letters.
func digitSubstitutionRate(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	suspect := 0
	for _, w := range words {
		letters, digits := 0, 0
		for _, r := range w {
			switch {
			case unicode.IsLetter(r):
				letters++
			case r == '0' || r == '1' || r == '5' || r == '8':
				digits++
			}
		}
		if letters >= 2 && digits > 0 {
			suspect++
		}
	}
	return float64(suspect) / float64(len(words))
}

// caseChaosRate is the fraction of words with interior case flips beyond
// ordinary capitalization (pAtRiCiA).
func caseChaosRate(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	chaotic := 0
	for _, w := range words {
		runes := []rune(w)
		flips := 0
		for i := 1; i < len(runes); i++ {
			a, b := runes[i-1], runes[i]
			if unicode.IsLetter(a) && unicode.IsLetter(b) &&
				unicode.IsLower(a) != unicode.IsLower(b) {
				flips++
			}
		}
		// One flip is normal capitalization boundary (McDonald); two or
		// more interior flips indicates corruption.
		if flips >= 2 && len(runes) >= 4 {
			chaotic++
		}
	}
	return float64(chaotic) / float64(len(words))
}

// spacingAnomalyRate measures multi-space runs and stranded single letters
// relative to document length.
func spacingAnomalyRate(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	anomalies := 0
	runLen := 0
	for _, r := range text {
		if r == ' ' {
			runLen++
			if runLen == 3 {
				anomalies++
			}
		} else {
			runLen = 0
		}
	}
	words := strings.Fields(text)
	stranded := 0
	for _, w := range words {
		if len(w) == 1 && unicode.IsLetter(rune(w[0])) {
			stranded++
		}
	}
	if len(words) == 0 {
		return 0
	}
	rate := float64(anomalies+stranded) / float64(len(words))
	if rate > 1 {
		rate = 1
	}
	return rate
}
