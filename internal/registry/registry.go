// Copyright the phi-redact authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package registry owns the set of active detectors. The set is closed and
// registered explicitly so the category rules downstream stay auditable;
// nothing is discovered by reflection. Initialization is one-time and
// guarded: a construction failure poisons the registry and no redaction
// runs against a half-initialized detector set.
package registry

import (
	"fmt"
	"sync"

	"phi-redact/internal/detector"
	"phi-redact/internal/detectors/address"
	"phi-redact/internal/detectors/age"
	"phi-redact/internal/detectors/contact"
	"phi-redact/internal/detectors/date"
	"phi-redact/internal/detectors/device"
	"phi-redact/internal/detectors/ids"
	"phi-redact/internal/detectors/name"
	"phi-redact/internal/detectors/provider"
	"phi-redact/internal/gateway"
	"phi-redact/internal/span"
)

// Registry holds the constructed detector set. All detectors share one
// accelerated-scan consultant; registration order is stable and doubles as
// the final tie-break key during conflict resolution.
type Registry struct {
	accel    *gateway.Consultant
	disabled map[string]bool

	mu        sync.Mutex
	detectors []detector.Detector
	ready     bool
	initErr   error
	done      bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithDisabled removes the named detectors from the set. Unknown names are
// an initialization error, not a silent no-op.
func WithDisabled(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			r.disabled[n] = true
		}
	}
}

// New creates an uninitialized registry. A nil consultant disables
// acceleration; every detector then runs its local cascade.
func New(accel *gateway.Consultant, opts ...Option) *Registry {
	r := &Registry{accel: accel, disabled: make(map[string]bool)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// constructors is the closed detector set, in registration order. Order is
// part of the engine's determinism contract: changing it changes which span
// wins a full tie, so additions go at the end.
func constructors(accel *gateway.Consultant) []detector.Detector {
	return []detector.Detector{
		name.NewLabeled(accel),
		name.NewLastFirst(accel),
		name.NewTitledCase(accel),
		name.NewAllCaps(accel),
		name.NewCompound(accel),
		provider.NewCredentialed(accel),
		provider.NewSignature(accel),
		date.NewBirthDate(accel),
		date.NewNumeric(accel),
		date.NewWritten(accel),
		age.NewOver90(accel),
		contact.NewPhone(accel),
		contact.NewFax(accel),
		contact.NewEmail(accel),
		contact.NewURL(accel),
		contact.NewIP(accel),
		ids.NewSSN(accel),
		ids.NewMRN(accel),
		ids.NewAccount(accel),
		ids.NewLicense(accel),
		ids.NewPassport(accel),
		ids.NewNPI(accel),
		ids.NewDEA(accel),
		ids.NewHealthPlan(accel),
		ids.NewUniqueID(accel),
		device.NewSerial(accel),
		device.NewVehicle(accel),
		address.NewStreet(accel),
		address.NewZip(accel),
		address.NewHospital(accel),
	}
}

// Initialize constructs and validates the detector set. It is idempotent:
// concurrent and repeated calls return the first outcome. A validation
// failure is permanent for the registry's lifetime.
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return r.initErr
	}
	r.done = true

	detectors := constructors(r.accel)
	if err := validate(detectors); err != nil {
		r.initErr = fmt.Errorf("registry initialization: %w", err)
		return r.initErr
	}

	if len(r.disabled) > 0 {
		known := make(map[string]bool, len(detectors))
		for _, d := range detectors {
			known[d.Name()] = true
		}
		for n := range r.disabled {
			if !known[n] {
				r.initErr = fmt.Errorf("registry initialization: cannot disable unknown detector %q", n)
				return r.initErr
			}
		}
		kept := detectors[:0]
		for _, d := range detectors {
			if !r.disabled[d.Name()] {
				kept = append(kept, d)
			}
		}
		detectors = kept
	}

	r.detectors = detectors
	r.ready = true
	return nil
}

// All returns the detector set in registration order, or nil before a
// successful Initialize.
func (r *Registry) All() []detector.Detector {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		return nil
	}
	out := make([]detector.Detector, len(r.detectors))
	copy(out, r.detectors)
	return out
}

// Ready reports whether the registry completed initialization successfully.
func (r *Registry) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func validate(detectors []detector.Detector) error {
	known := make(map[span.FilterType]bool)
	for _, ft := range span.AllTypes() {
		known[ft] = true
	}

	seen := make(map[string]bool, len(detectors))
	for _, d := range detectors {
		if d == nil {
			return fmt.Errorf("nil detector in registration list")
		}
		if d.Name() == "" {
			return fmt.Errorf("detector %T has no name", d)
		}
		if seen[d.Name()] {
			return fmt.Errorf("duplicate detector name %q", d.Name())
		}
		seen[d.Name()] = true
		if !known[d.Type()] {
			return fmt.Errorf("detector %q declares unknown category %q", d.Name(), d.Type())
		}
		if d.Priority() < span.PriorityLow || d.Priority() > span.PriorityMax {
			return fmt.Errorf("detector %q priority %d outside [%d,%d]",
				d.Name(), d.Priority(), span.PriorityLow, span.PriorityMax)
		}
	}
	return nil
}
