package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"athleteportal/internal/domain/athlete"
)

const samplePolicy = `
admin_emails = ["Head.Coach@club.test"]

[[category]]
name = "premium"
substrings = ["Apex", "elite"]
bundle = ["goal_setting", "physical_advanced"]

[[category]]
name = "camp"
substrings = ["camp"]
suppress_reports = true
`

func cleared(tier, email string) athlete.Record {
	return athlete.Record{
		ID: "a1", Name: "Sam", Email: email, ProductTier: tier,
		AccountActive: "yes", ParentConsent: "yes",
	}
}

// TestParsePolicy verifies categories and admins are applied.
func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(samplePolicy, "extra@club.test")
	if err != nil {
		t.Fatalf("ParsePolicy: %v", err)
	}

	res := p.Resolve(cleared("APEX squad", "sam@club.test"))
	if !res.Capabilities.ShowGoalSetting || !res.Capabilities.ShowReports || res.Capabilities.ShowWellness {
		t.Errorf("apex capabilities = %+v", res.Capabilities)
	}
	if res := p.Resolve(cleared("Elite Camp", "sam@club.test")); res.Capabilities.ShowReports {
		t.Error("camp should suppress reports")
	}
	for _, admin := range []string{"head.coach@club.test", "EXTRA@club.test"} {
		if !p.IsAdmin(admin) {
			t.Errorf("%s should be an admin", admin)
		}
	}
}

// TestParsePolicy_Errors verifies malformed policies are rejected.
func TestParsePolicy_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{"empty", ``, ErrNoCategories, ""},
		{"no name", "[[category]]\nsubstrings = [\"x\"]", ErrCategoryName, ""},
		{"no substrings", "[[category]]\nname = \"x\"\nsubstrings = [\" \"]", ErrCategoryMatches, ""},
		{"bad capability", "[[category]]\nname = \"x\"\nsubstrings = [\"x\"]\nbundle = [\"teleport\"]", nil, "teleport"},
		{"bad toml", "[[category", nil, "parse policy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy(tt.doc)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

// TestLoadPolicy reads from disk.
func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.toml")
	if err := os.WriteFile(path, []byte(samplePolicy), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPolicy(path); err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
