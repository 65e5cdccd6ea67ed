package athlete

import (
	"errors"
	"net/mail"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Membership types.
const (
	MembershipStandard = "standard"
	MembershipPRG      = "PRG"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("athlete name cannot be empty")
	ErrNameTooLong  = errors.New("athlete name cannot exceed 100 characters")
	ErrInvalidEmail = errors.New("athlete email must be valid")
)

// Access carries manual per-athlete overrides.
type Access struct {
	IsFullAccess bool `json:"isFullAccess"`
}

// Record holds state for one coached athlete.
//
// Safety and commercial fields are kept as the raw text the record source
// supplied. Interpretation (trimming, case folding, fail-closed defaults) lives
// in the entitlement package.
type Record struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	ProductTier    string `json:"productTier"`
	MembershipType string `json:"membershipType"`
	Package        string `json:"package"`

	AccountActive string `json:"accountActive"`
	WaiverStatus  string `json:"waiverStatus"`
	ParentConsent string `json:"parentConsent"`

	Access Access `json:"access"`

	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Validate checks the identity fields required to place a record in a roster.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty, Email must parse as an address
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Tier returns the tier label used for entitlement matching.
// ProductTier is canonical; Package is only consulted when ProductTier is blank.
// INVARIANT: Record is not mutated
func (r Record) Tier() string {
	if strings.TrimSpace(r.ProductTier) != "" {
		return r.ProductTier
	}
	return r.Package
}

// TierConflict reports whether ProductTier and the legacy Package label are
// both set and disagree after normalization.
func (r Record) TierConflict() bool {
	tier := NormalizeKey(r.ProductTier)
	pkg := NormalizeKey(r.Package)
	return tier != "" && pkg != "" && tier != pkg
}

// IsPRG reports whether the athlete is on the PRG membership. Membership is
// informational and never changes entitlement resolution.
func (r Record) IsPRG() bool {
	return strings.EqualFold(strings.TrimSpace(r.MembershipType), MembershipPRG)
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (r Record) Clone() Record {
	out := r
	if r.Metrics != nil {
		out.Metrics = make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			out.Metrics[k] = v
		}
	}
	return out
}

// NormalizeKey trims and lowercases an id, email or label for comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
