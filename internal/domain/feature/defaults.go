package feature

import "athleteportal/internal/domain/entitlement"

// DefaultCatalog returns the dashboard features and the capability each needs.
//
// Every capability is referenced by at least one entry. As new panels are
// added, append to this list.
func DefaultCatalog() []Feature {
	return []Feature{
		{
			Key:         "goal_setting",
			Title:       "Goal Setting",
			Description: "Season goals and coach check-ins",
			Kind:        KindSection,
			Capability:  entitlement.CapGoalSetting,
			Enabled:     true,
			Position:    10,
		},
		{
			Key:         "video_lab",
			Title:       "Video Lab",
			Description: "Technique clips and coach annotations",
			Kind:        KindTool,
			Capability:  entitlement.CapVideoLab,
			Enabled:     true,
			Position:    20,
		},
		{
			Key:         "wellness",
			Title:       "Wellness",
			Description: "Daily readiness, sleep and soreness tracking",
			Kind:        KindSection,
			Capability:  entitlement.CapWellness,
			Enabled:     true,
			Position:    30,
		},
		{
			Key:         "physical_profile",
			Title:       "Physical Profile",
			Description: "Headline strength and movement scores",
			Kind:        KindSection,
			Capability:  entitlement.CapPhysicalSimple,
			Enabled:     true,
			Position:    40,
		},
		{
			Key:         "physical_advanced",
			Title:       "Advanced Testing",
			Description: "Force plate, asymmetry and load breakdowns",
			Kind:        KindSection,
			Capability:  entitlement.CapPhysicalAdvanced,
			Enabled:     true,
			Position:    50,
		},
		{
			Key:         "mentorship",
			Title:       "Mentorship",
			Description: "One-to-one mentoring sessions",
			Kind:        KindTool,
			Capability:  entitlement.CapMentorship,
			Enabled:     true,
			Position:    60,
		},
		{
			Key:         "performance_report",
			Title:       "Performance Report",
			Description: "Coach-reviewed testing report",
			Kind:        KindReport,
			Capability:  entitlement.CapReports,
			Enabled:     true,
			Position:    70,
		},
		{
			Key:         "advanced_metrics",
			Title:       "Advanced Metrics",
			Description: "Professional-grade metric trends",
			Kind:        KindReport,
			Capability:  entitlement.CapAdvancedMetrics,
			Enabled:     true,
			Position:    80,
		},
	}
}
