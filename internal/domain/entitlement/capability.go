package entitlement

// Capability names one dashboard section, report or tool.
type Capability string

const (
	CapGoalSetting      Capability = "goal_setting"
	CapVideoLab         Capability = "video_lab"
	CapWellness         Capability = "wellness"
	CapPhysicalSimple   Capability = "physical_simple"
	CapPhysicalAdvanced Capability = "physical_advanced"
	CapMentorship       Capability = "mentorship"
	CapReports          Capability = "reports"
	CapAdvancedMetrics  Capability = "advanced_metrics"
)

// AllCapabilities lists every capability in display order.
var AllCapabilities = []Capability{
	CapGoalSetting,
	CapVideoLab,
	CapWellness,
	CapPhysicalSimple,
	CapPhysicalAdvanced,
	CapMentorship,
	CapReports,
	CapAdvancedMetrics,
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// CapabilitySet is the fixed set of visibility flags produced by a resolution.
// The zero value grants nothing.
type CapabilitySet struct {
	ShowGoalSetting      bool `json:"showGoalSetting"`
	ShowVideoLab         bool `json:"showVideoLab"`
	ShowWellness         bool `json:"showWellness"`
	ShowPhysicalSimple   bool `json:"showPhysicalSimple"`
	ShowPhysicalAdvanced bool `json:"showPhysicalAdvanced"`
	ShowMentorship       bool `json:"showMentorship"`
	ShowReports          bool `json:"showReports"`
	ShowAdvancedMetrics  bool `json:"showAdvancedMetrics"`
}

// None is the all-false set returned when a gate blocks.
var None = CapabilitySet{}

// All returns a set with every flag true.
func All() CapabilitySet {
	return CapabilitySet{
		ShowGoalSetting:      true,
		ShowVideoLab:         true,
		ShowWellness:         true,
		ShowPhysicalSimple:   true,
		ShowPhysicalAdvanced: true,
		ShowMentorship:       true,
		ShowReports:          true,
		ShowAdvancedMetrics:  true,
	}
}

// Has reports whether a capability is granted.
func (s CapabilitySet) Has(c Capability) bool {
	switch c {
	case CapGoalSetting:
		return s.ShowGoalSetting
	case CapVideoLab:
		return s.ShowVideoLab
	case CapWellness:
		return s.ShowWellness
	case CapPhysicalSimple:
		return s.ShowPhysicalSimple
	case CapPhysicalAdvanced:
		return s.ShowPhysicalAdvanced
	case CapMentorship:
		return s.ShowMentorship
	case CapReports:
		return s.ShowReports
	case CapAdvancedMetrics:
		return s.ShowAdvancedMetrics
	default:
		return false
	}
}

// with returns a copy of s with c granted. Unknown capabilities are ignored.
func (s CapabilitySet) with(c Capability) CapabilitySet {
	switch c {
	case CapGoalSetting:
		s.ShowGoalSetting = true
	case CapVideoLab:
		s.ShowVideoLab = true
	case CapWellness:
		s.ShowWellness = true
	case CapPhysicalSimple:
		s.ShowPhysicalSimple = true
	case CapPhysicalAdvanced:
		s.ShowPhysicalAdvanced = true
	case CapMentorship:
		s.ShowMentorship = true
	case CapReports:
		s.ShowReports = true
	case CapAdvancedMetrics:
		s.ShowAdvancedMetrics = true
	}
	return s
}

// Granted lists the granted capabilities in display order.
func (s CapabilitySet) Granted() []Capability {
	out := []Capability{}
	for _, c := range AllCapabilities {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether nothing is granted.
func (s CapabilitySet) Empty() bool {
	return s == None
}
