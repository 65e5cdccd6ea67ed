package feature

import (
	"errors"

	"athleteportal/internal/domain/entitlement"
)

// Kind groups features by where they appear on the dashboard.
type Kind string

const (
	KindSection Kind = "section"
	KindReport  Kind = "report"
	KindTool    Kind = "tool"
)

// Feature is one catalog entry: a dashboard section, report or tool unlocked
// by a single capability.
//
// Key is stable and referenced by the presentation layer.
//
// Enabled is a global kill switch. Turning it off hides the feature for
// everyone; it never grants a capability the resolver withheld.
type Feature struct {
	Key         string                 `json:"key"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Kind        Kind                   `json:"kind"`
	Capability  entitlement.Capability `json:"capability"`
	Enabled     bool                   `json:"enabled"`
	Position    int                    `json:"position"`
}

var (
	ErrMissingKey        = errors.New("feature key is required")
	ErrMissingTitle      = errors.New("feature title is required")
	ErrInvalidKind       = errors.New("feature kind must be section, report, or tool")
	ErrUnknownCapability = errors.New("feature capability is not recognised")
)

// Validate checks required fields for a Feature.
// PRE: Feature struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (f *Feature) Validate() error {
	if f.Key == "" {
		return ErrMissingKey
	}
	if f.Title == "" {
		return ErrMissingTitle
	}
	switch f.Kind {
	case KindSection, KindReport, KindTool:
	default:
		return ErrInvalidKind
	}
	if !f.Capability.Valid() {
		return ErrUnknownCapability
	}
	return nil
}

// Availability is the per-athlete state of a feature.
type Availability string

const (
	// Visible: enabled and the capability is granted.
	Visible Availability = "visible"
	// Locked: enabled but not granted; shown with a lock and upsell.
	Locked Availability = "locked"
	// Hidden: disabled by the kill switch.
	Hidden Availability = "hidden"
)

// AvailabilityFor returns how the feature should render for a capability set.
//
// INVARIANT: f is not mutated
func (f Feature) AvailabilityFor(caps entitlement.CapabilitySet) Availability {
	if !f.Enabled {
		return Hidden
	}
	if caps.Has(f.Capability) {
		return Visible
	}
	return Locked
}
