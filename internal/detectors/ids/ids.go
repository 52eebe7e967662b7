// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ids detects numeric and alphanumeric identifiers: SSNs, medical
// record numbers, account numbers, licenses, passports, NPIs, DEA numbers,
// health plan IDs, and labeled unique identifiers. Checksum-bearing formats
// (NPI, DEA) are validated before a span is emitted; the rest lean on
// explicit labels.
package ids

import (
	"context"
	"regexp"

	"phi-redact/internal/detector"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

// PriorityLabeledID is carried by identifier spans confirmed by an explicit
// label, above Last,First names but below patient-name labels.
const PriorityLabeledID = 165

var (
	ssnRe        = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	mrnRe        = regexp.MustCompile(`(?i)\b(?:MRN|medical\s+record\s*(?:number|no\.?|#)?)\s*[:#]?\s*(\d{6,10})\b`)
	accountRe    = regexp.MustCompile(`(?i)\b(?:account|acct)\s*(?:number|no\.?|#)?\s*[:#]?\s*(\d{6,12})\b`)
	licenseRe    = regexp.MustCompile(`(?i)\b(?:driver'?s?\s+)?licen[sc]e\s*(?:number|no\.?|#)?\s*[:#]?\s*([A-Z0-9]{5,12})\b`)
	passportRe   = regexp.MustCompile(`(?i)\bpassport\s*(?:number|no\.?|#)?\s*[:#]?\s*([A-Z0-9]{6,9})\b`)
	npiRe        = regexp.MustCompile(`\b\d{10}\b`)
	deaRe        = regexp.MustCompile(`\b[A-Z]{2}\d{7}\b`)
	healthPlanRe = regexp.MustCompile(`(?i)\b(?:member|policy|subscriber|group|plan)\s*(?:id|number|no\.?|#)\s*[:#]?\s*([A-Z0-9-]{6,14})\b`)
	uniqueIDRe   = regexp.MustCompile(`(?i)\b(?:study|specimen|case|accession|order)\s*(?:id|number|no\.?|#)\s*[:#]?\s*([A-Z0-9-]{4,16})\b`)
)

var ssnKeywords = []string{"ssn", "social security", "soc sec"}

// SSN detects social security numbers in dashed form; an SSN label nearby
// raises the span to labeled priority.
type SSN struct {
	accel *gateway.Consultant
}

func NewSSN(accel *gateway.Consultant) *SSN { return &SSN{accel: accel} }

func (d *SSN) Name() string          { return "ids.ssn" }
func (d *SSN) Type() span.FilterType { return span.TypeSSN }
func (d *SSN) Priority() int         { return 90 }

func (d *SSN) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range ssnRe.FindAllStringIndex(text, -1) {
		confidence, priority, pattern := 0.7, d.Priority(), "dashed SSN shape"
		if detector.HasKeywordNear(text, loc[0], loc[1], 25, ssnKeywords) {
			confidence, priority, pattern = 0.95, PriorityLabeledID, "labeled SSN"
		}
		s, err := span.New(text, loc[0], loc[1], d.Type(), confidence, priority, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// labeledNumber is the shared shape of the label-driven identifier
// detectors: one regex whose first capture group is the identifier value.
type labeledNumber struct {
	accel      *gateway.Consultant
	name       string
	ft         span.FilterType
	re         *regexp.Regexp
	confidence float64
	pattern    string
}

func (d *labeledNumber) Name() string          { return d.name }
func (d *labeledNumber) Type() span.FilterType { return d.ft }
func (d *labeledNumber) Priority() int         { return PriorityLabeledID }

func (d *labeledNumber) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.ft, d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, idx := range d.re.FindAllStringSubmatchIndex(text, -1) {
		s, err := span.FromSubmatch(text, idx, 1, d.ft, d.confidence, d.Priority(), d.pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func NewMRN(accel *gateway.Consultant) detector.Detector {
	return &labeledNumber{accel: accel, name: "ids.mrn", ft: span.TypeMRN, re: mrnRe, confidence: 0.9, pattern: "labeled MRN"}
}

func NewAccount(accel *gateway.Consultant) detector.Detector {
	return &labeledNumber{accel: accel, name: "ids.account", ft: span.TypeAccount, re: accountRe, confidence: 0.9, pattern: "labeled account number"}
}

func NewLicense(accel *gateway.Consultant) detector.Detector {
	return &labeledNumber{accel: accel, name: "ids.license", ft: span.TypeLicense, re: licenseRe, confidence: 0.85, pattern: "labeled license number"}
}

func NewPassport(accel *gateway.Consultant) detector.Detector {
	return &labeledNumber{accel: accel, name: "ids.passport", ft: span.TypePassport, re: passportRe, confidence: 0.85, pattern: "labeled passport number"}
}

func NewHealthPlan(accel *gateway.Consultant) detector.Detector {
	return &labeledNumber{accel: accel, name: "ids.health-plan", ft: span.TypeHealthPlan, re: healthPlanRe, confidence: 0.85, pattern: "labeled health plan ID"}
}

func NewUniqueID(accel *gateway.Consultant) detector.Detector {
	return &labeledNumber{accel: accel, name: "ids.unique", ft: span.TypeUniqueID, re: uniqueIDRe, confidence: 0.8, pattern: "labeled unique identifier"}
}

// NPI detects 10-digit National Provider Identifiers. An NPI carries a Luhn
// check digit computed over the number with the industry prefix 80840
// prepended; ten digits that fail the check are not an NPI.
type NPI struct {
	accel *gateway.Consultant
}

func NewNPI(accel *gateway.Consultant) *NPI { return &NPI{accel: accel} }

func (d *NPI) Name() string          { return "ids.npi" }
func (d *NPI) Type() span.FilterType { return span.TypeNPI }
func (d *NPI) Priority() int         { return span.PriorityHigh }

func (d *NPI) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range npiRe.FindAllStringIndex(text, -1) {
		if !ValidNPI(text[loc[0]:loc[1]]) {
			continue
		}
		priority, pattern := d.Priority(), "Luhn-valid NPI"
		if detector.HasKeywordNear(text, loc[0], loc[1], 15, []string{"npi"}) {
			priority, pattern = PriorityLabeledID, "labeled NPI"
		}
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.95, priority, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ValidNPI runs the Luhn check over "80840" + npi.
func ValidNPI(npi string) bool {
	if len(npi) != 10 {
		return false
	}
	full := "80840" + npi
	sum := 0
	double := false
	for i := len(full) - 1; i >= 0; i-- {
		digit := int(full[i] - '0')
		if digit < 0 || digit > 9 {
			return false
		}
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// DEA detects DEA registration numbers: two letters and seven digits where
// the seventh digit is the checksum (odd digits plus twice the even digits,
// ones place).
type DEA struct {
	accel *gateway.Consultant
}

func NewDEA(accel *gateway.Consultant) *DEA { return &DEA{accel: accel} }

func (d *DEA) Name() string          { return "ids.dea" }
func (d *DEA) Type() span.FilterType { return span.TypeDEA }
func (d *DEA) Priority() int         { return span.PriorityHigh }

func (d *DEA) Detect(ctx context.Context, text string, dc *detector.DocContext) ([]span.Span, error) {
	if hits := d.accel.Spans(ctx, text, d.Type(), d.Priority()); hits != nil {
		return hits, nil
	}

	var out []span.Span
	for _, loc := range deaRe.FindAllStringIndex(text, -1) {
		if !ValidDEA(text[loc[0]:loc[1]]) {
			continue
		}
		priority, pattern := d.Priority(), "checksum-valid DEA number"
		if detector.HasKeywordNear(text, loc[0], loc[1], 15, []string{"dea"}) {
			priority, pattern = PriorityLabeledID, "labeled DEA number"
		}
		s, err := span.New(text, loc[0], loc[1], d.Type(), 0.95, priority, pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ValidDEA verifies the DEA check digit over the seven-digit tail.
func ValidDEA(dea string) bool {
	if len(dea) != 9 {
		return false
	}
	digits := dea[2:]
	odd, even := 0, 0
	for i := 0; i < 6; i++ {
		d := int(digits[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if i%2 == 0 {
			odd += d
		} else {
			even += d
		}
	}
	check := int(digits[6] - '0')
	return (odd+2*even)%10 == check
}
