package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"athleteportal/internal/domain/entitlement"
)

var (
	ErrNoCategories    = errors.New("policy file defines no categories")
	ErrCategoryName    = errors.New("every category needs a name")
	ErrCategoryMatches = errors.New("every category needs at least one substring")
)

// policyFile is the TOML layout of a tier policy, e.g.
//
//	admin_emails = ["head.coach@club.test"]
//
//	[[category]]
//	name = "premium"
//	substrings = ["apex", "elite"]
//	bundle = ["goal_setting", "video_lab", "wellness"]
type policyFile struct {
	AdminEmails []string         `toml:"admin_emails"`
	Categories  []policyCategory `toml:"category"`
}

type policyCategory struct {
	Name            string   `toml:"name"`
	Substrings      []string `toml:"substrings"`
	Bundle          []string `toml:"bundle"`
	SuppressReports bool     `toml:"suppress_reports"`
}

// LoadPolicy reads a tier policy from a TOML file. Admin emails from the
// file are combined with extraAdmins. The first category is the one admin
// identities match.
// PRE: path names a readable TOML file
// POST: Returns a policy whose bundles only name known capabilities
func LoadPolicy(path string, extraAdmins ...string) (*entitlement.Policy, error) {
	var pf policyFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return pf.policy(extraAdmins)
}

// ParsePolicy is LoadPolicy for an in-memory document.
func ParsePolicy(doc string, extraAdmins ...string) (*entitlement.Policy, error) {
	var pf policyFile
	if _, err := toml.Decode(doc, &pf); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	return pf.policy(extraAdmins)
}

func (pf policyFile) policy(extraAdmins []string) (*entitlement.Policy, error) {
	if len(pf.Categories) == 0 {
		return nil, ErrNoCategories
	}
	categories := make([]entitlement.Category, 0, len(pf.Categories))
	for i, pc := range pf.Categories {
		c := entitlement.Category{
			Name:              strings.TrimSpace(pc.Name),
			SuppressesReports: pc.SuppressReports,
		}
		if c.Name == "" {
			return nil, fmt.Errorf("category %d: %w", i+1, ErrCategoryName)
		}
		for _, s := range pc.Substrings {
			if s = entitlement.NormalizeTier(s); s != "" {
				c.Substrings = append(c.Substrings, s)
			}
		}
		if len(c.Substrings) == 0 {
			return nil, fmt.Errorf("category %q: %w", c.Name, ErrCategoryMatches)
		}
		for _, b := range pc.Bundle {
			capability := entitlement.Capability(strings.TrimSpace(b))
			if !capability.Valid() {
				return nil, fmt.Errorf("category %q: unknown capability %q", c.Name, b)
			}
			c.Bundle = append(c.Bundle, capability)
		}
		categories = append(categories, c)
	}
	admins := append(append([]string(nil), pf.AdminEmails...), extraAdmins...)
	return entitlement.NewPolicy(categories, admins...), nil
}
