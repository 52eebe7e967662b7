// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vocab provides the read-only reference vocabularies detectors
// consult to suppress false positives: common words that pattern-match like
// names, medical terminology, medical eponyms, and hospital-name components.
// All lookups are pure queries over data frozen at init, safe for
// unsynchronized concurrent reads.
package vocab

import (
	"strings"
)

var commonWords = toSet([]string{
	// Document structure words that match capitalized-pair name patterns.
	"patient", "doctor", "hospital", "clinic", "medical", "record",
	"date", "birth", "admission", "discharge", "history", "physical",
	"assessment", "plan", "diagnosis", "medication", "allergies",
	"review", "systems", "chief", "complaint", "follow", "up",
	"emergency", "department", "laboratory", "results", "normal",
	"name", "number", "account", "member", "status", "gender", "phone",
	"address", "email", "signature", "insurance", "provider", "primary",
	"care", "visit", "notes", "summary", "report", "page", "confidential",
	// Days and months read as capitalized words in headers.
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
	"sunday", "january", "february", "march", "april", "june", "july",
	"august", "september", "october", "november", "december",
})

var medicalTerms = toSet([]string{
	"hypertension", "diabetes", "mellitus", "asthma", "copd", "pneumonia",
	"anemia", "sepsis", "fracture", "lesion", "edema", "syncope",
	"tachycardia", "bradycardia", "afib", "chf", "cad", "ckd", "gerd",
	"migraine", "seizure", "stroke", "angina", "dyspnea", "nausea",
	"vomiting", "fever", "chills", "fatigue", "malaise", "rash",
	"metformin", "lisinopril", "atorvastatin", "amlodipine", "omeprazole",
	"albuterol", "gabapentin", "hydrochlorothiazide", "levothyroxine",
	"insulin", "warfarin", "heparin", "aspirin", "ibuprofen",
	"bilateral", "chronic", "acute", "stable", "elevated", "negative",
	"positive", "unremarkable", "benign", "malignant",
})

// Eponymous conditions and signs: capitalized surnames that are medicine,
// not patients.
var eponyms = toSet([]string{
	"crohn", "parkinson", "alzheimer", "hodgkin", "graves", "addison",
	"cushing", "raynaud", "sjogren", "wilson", "huntington", "bell",
	"barrett", "paget", "marfan", "turner", "down", "tourette",
	"kaposi", "burkitt", "wernicke", "korsakoff", "babinski", "homan",
	"murphy", "mcburney", "glasgow", "apgar", "braden", "morse",
})

// Words that appear inside institution names. A capitalized pair whose
// neighborhood contains one of these is more likely a facility than a
// person.
var hospitalWords = toSet([]string{
	"hospital", "medical", "center", "clinic", "health", "healthcare",
	"memorial", "general", "regional", "community", "university",
	"children's", "childrens", "saint", "st", "mercy", "baptist",
	"methodist", "presbyterian", "veterans", "county", "institute",
})

// IsCommonWord reports whether every word of text is ordinary document
// vocabulary rather than a plausible name.
func IsCommonWord(text string) bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !commonWords[trimWord(f)] {
			return false
		}
	}
	return true
}

// IsMedicalTerm reports whether any word of text is clinical vocabulary.
func IsMedicalTerm(text string) bool {
	for _, f := range strings.Fields(strings.ToLower(text)) {
		if medicalTerms[trimWord(f)] {
			return true
		}
	}
	return false
}

// IsMedicalEponym reports whether text is (or leads with) an eponymous
// condition surname, e.g. "Crohn" in "Crohn's disease".
func IsMedicalEponym(text string) bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return false
	}
	first := trimWord(strings.TrimSuffix(strings.TrimSuffix(fields[0], "'s"), "’s"))
	return eponyms[first]
}

// IsPartOfHospitalName reports whether the matched text sits inside an
// institution name, judged by the surrounding window.
func IsPartOfHospitalName(text, window string) bool {
	for _, f := range strings.Fields(strings.ToLower(window)) {
		if hospitalWords[trimWord(f)] {
			return true
		}
	}
	return false
}

func trimWord(w string) string {
	return strings.Trim(w, ".,;:()[]{}\"'`")
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
