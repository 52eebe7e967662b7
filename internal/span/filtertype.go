// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package span

// FilterType is the closed set of Safe Harbor identifier categories this
// engine detects. The set is deliberately enumerated rather than open so the
// resolver's category rules can be exhaustive.
type FilterType string

const (
	TypeName       FilterType = "NAME"
	TypeProvider   FilterType = "PROVIDER_NAME"
	TypeDate       FilterType = "DATE"
	TypeSSN        FilterType = "SSN"
	TypeMRN        FilterType = "MRN"
	TypePhone      FilterType = "PHONE"
	TypeFax        FilterType = "FAX"
	TypeEmail      FilterType = "EMAIL"
	TypeURL        FilterType = "URL"
	TypeIP         FilterType = "IP"
	TypeAddress    FilterType = "ADDRESS"
	TypeZipcode    FilterType = "ZIPCODE"
	TypeDevice     FilterType = "DEVICE"
	TypeVehicle    FilterType = "VEHICLE"
	TypeAccount    FilterType = "ACCOUNT"
	TypeLicense    FilterType = "LICENSE"
	TypePassport   FilterType = "PASSPORT"
	TypeNPI        FilterType = "NPI"
	TypeDEA        FilterType = "DEA"
	TypeHealthPlan FilterType = "HEALTH_PLAN"
	TypeUniqueID   FilterType = "UNIQUE_ID"
	TypeAge        FilterType = "AGE"
	TypeHospital   FilterType = "HOSPITAL"
)

// AllTypes lists every category in a stable order.
func AllTypes() []FilterType {
	return []FilterType{
		TypeName, TypeProvider, TypeDate, TypeSSN, TypeMRN, TypePhone,
		TypeFax, TypeEmail, TypeURL, TypeIP, TypeAddress, TypeZipcode,
		TypeDevice, TypeVehicle, TypeAccount, TypeLicense, TypePassport,
		TypeNPI, TypeDEA, TypeHealthPlan, TypeUniqueID, TypeAge, TypeHospital,
	}
}

// IsPersonIdentity reports whether the category names a person. Patient
// names are Safe Harbor PHI; provider names are redacted for document
// coherence but must never be relabeled as patient identifiers.
func (ft FilterType) IsPersonIdentity() bool {
	return ft == TypeName || ft == TypeProvider
}

func (ft FilterType) String() string {
	return string(ft)
}
