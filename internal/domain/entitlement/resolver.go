// Package entitlement decides which dashboard sections, reports and tools an
// athlete may see.
//
// Resolution is a pure function of one athlete record: ordered safety gates
// (payment, waiver, consent) run first and short-circuit; only when all pass
// are tier categories matched, the manual full-access override applied, and
// the composite report flags derived. Missing or malformed input always
// degrades to the most restrictive interpretation.
package entitlement

import (
	"strings"

	"athleteportal/internal/domain/athlete"
)

// DefaultAdminEmail is the demo identity that always matches the premium
// category. Gates still apply to it.
const DefaultAdminEmail = "admin@athleteportal.app"

// Resolution is the output of Resolve.
type Resolution struct {
	Gate         GateResult    `json:"gate"`
	Capabilities CapabilitySet `json:"capabilities"`
	// Categories lists the tier categories matched, for diagnostics.
	Categories []string `json:"categories"`
}

// Policy holds the category table and admin identities used for resolution.
// A Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	categories  []Category
	adminEmails map[string]bool
	premium     string
}

// NewPolicy builds a policy from a category table and admin emails. The
// first category is treated as the highest and is what admin identities match.
// PRE: categories is non-empty
// POST: Returns a policy holding private copies of its inputs
func NewPolicy(categories []Category, adminEmails ...string) *Policy {
	p := &Policy{
		categories:  make([]Category, len(categories)),
		adminEmails: make(map[string]bool, len(adminEmails)),
	}
	for i, c := range categories {
		c.Substrings = append([]string(nil), c.Substrings...)
		c.Bundle = append([]Capability(nil), c.Bundle...)
		p.categories[i] = c
	}
	if len(p.categories) > 0 {
		p.premium = p.categories[0].Name
	}
	for _, e := range adminEmails {
		if e = athlete.NormalizeKey(e); e != "" {
			p.adminEmails[e] = true
		}
	}
	return p
}

var defaultPolicy = NewPolicy(DefaultCategories(), DefaultAdminEmail)

// DefaultPolicy returns the standard tier vocabulary with the default admin identity.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

// Resolve evaluates a record against the default policy.
func Resolve(r athlete.Record) Resolution {
	return defaultPolicy.Resolve(r)
}

// Categories returns a copy of the policy's category table.
func (p *Policy) Categories() []Category {
	out := make([]Category, len(p.categories))
	copy(out, p.categories)
	return out
}

// IsAdmin reports whether email is one of the policy's admin identities.
func (p *Policy) IsAdmin(email string) bool {
	return p.adminEmails[athlete.NormalizeKey(email)]
}

// Resolve computes the gate outcome and capability set for one record.
// PRE: none; every field may be blank or malformed
// POST: Blocked results carry the all-false set
// INVARIANT: r is not mutated; identical input yields identical output
func (p *Policy) Resolve(r athlete.Record) Resolution {
	gate := EvaluateGates(r)
	if gate.IsBlocked() {
		return Resolution{Gate: gate, Capabilities: None, Categories: []string{}}
	}

	tier := NormalizeTier(r.Tier())
	isAdmin := p.IsAdmin(r.Email)

	caps := None
	matched := []string{}
	camp := false
	for _, c := range p.categories {
		hit := c.Matches(tier) || (isAdmin && c.Name == p.premium)
		if !hit {
			continue
		}
		matched = append(matched, c.Name)
		for _, granted := range c.Bundle {
			caps = caps.with(granted)
		}
		if c.SuppressesReports {
			camp = true
		}
	}

	if r.Access.IsFullAccess {
		caps = All()
	}

	reports := caps.ShowPhysicalAdvanced && !camp
	caps.ShowReports = reports
	caps.ShowAdvancedMetrics = reports

	return Resolution{Gate: Passed, Capabilities: caps, Categories: matched}
}

// BlockingMessage returns the full-screen text shown for a blocked gate, or
// "" when the gate passed.
func BlockingMessage(g GateResult) string {
	switch g.Reason {
	case ReasonInactiveAccount:
		return "Your membership is inactive. Please update your payment details to access your dashboard."
	case ReasonWaiverRequired:
		return "Please sign the athlete waiver before continuing."
	case ReasonConsentRequired:
		return "A parent or guardian must give consent before this dashboard can be shown."
	case ReasonNone:
		return ""
	default:
		return "Access to this dashboard is currently unavailable: " + strings.ReplaceAll(string(g.Reason), "_", " ") + "."
	}
}
