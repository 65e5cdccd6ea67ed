package entitlement

import "strings"

// Category is a named group of tier substrings that unlocks a capability bundle.
type Category struct {
	Name       string
	Substrings []string
	Bundle     []Capability
	// SuppressesReports marks the low-commitment tier that never sees
	// professional reporting.
	SuppressesReports bool
}

// Category names.
const (
	CategoryPremium = "premium"
	CategoryTesting = "testing"
	CategoryGeneral = "general"
	CategoryStarter = "starter"
	CategoryCamp    = "camp"
)

// DefaultCategories is the tier vocabulary. Categories are additive; a tier
// label may match several of them.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:       CategoryPremium,
			Substrings: []string{"apex", "elite", "specific"},
			Bundle: []Capability{
				CapGoalSetting, CapVideoLab, CapWellness,
				CapPhysicalSimple, CapPhysicalAdvanced, CapMentorship,
			},
		},
		{
			Name:       CategoryTesting,
			Substrings: []string{"testing", "dynamo"},
			Bundle:     []Capability{CapPhysicalSimple, CapPhysicalAdvanced, CapWellness},
		},
		{
			Name:       CategoryGeneral,
			Substrings: []string{"general"},
			Bundle:     []Capability{CapWellness, CapPhysicalSimple},
		},
		{
			Name:       CategoryStarter,
			Substrings: []string{"goal setting", "starter"},
			Bundle:     []Capability{CapGoalSetting, CapVideoLab},
		},
		{
			Name:              CategoryCamp,
			Substrings:        []string{"camp"},
			SuppressesReports: true,
		},
	}
}

// NormalizeTier trims and lowercases a tier label.
func NormalizeTier(tier string) string {
	return strings.ToLower(strings.TrimSpace(tier))
}

// Matches reports whether the normalized tier contains any of the
// category's substrings.
// PRE: tier is already normalized
func (c Category) Matches(tier string) bool {
	if tier == "" {
		return false
	}
	for _, sub := range c.Substrings {
		if strings.Contains(tier, sub) {
			return true
		}
	}
	return false
}

// MatchCategories returns the names of every category the tier matches, in
// table order.
func MatchCategories(categories []Category, tier string) []string {
	norm := NormalizeTier(tier)
	out := []string{}
	for _, c := range categories {
		if c.Matches(norm) {
			out = append(out, c.Name)
		}
	}
	return out
}
