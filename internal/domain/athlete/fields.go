package athlete

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// waiverMalformed is stored when a waiver value is present but not text.
// It is deliberately not "signed" so the waiver gate fails.
const waiverMalformed = "invalid"

// Historical field names accepted from record sources, canonical name first.
var fieldAliases = map[string][]string{
	"id":             {"id", "athleteId", "athlete_id"},
	"name":           {"name", "fullName", "full_name"},
	"email":          {"email", "emailAddress", "email_address"},
	"productTier":    {"productTier", "product_tier", "tier"},
	"package":        {"package"},
	"membershipType": {"membershipType", "membership_type", "membership"},
	"accountActive":  {"accountActive", "account_active", "active"},
	"waiverStatus":   {"waiverStatus", "waiver_status", "waiver"},
	"parentConsent":  {"parentConsent", "parent_consent", "consent"},
	"isFullAccess":   {"isFullAccess", "is_full_access", "fullAccess", "full_access"},
}

// known is the lowercase set of every alias, used to keep them out of Metrics.
var known = func() map[string]bool {
	m := make(map[string]bool)
	for _, names := range fieldAliases {
		for _, n := range names {
			m[strings.ToLower(n)] = true
		}
	}
	m["access"] = true
	m["metrics"] = true
	return m
}()

// FromFields builds a Record from a loosely typed payload such as a decoded
// JSON object from a remote lookup. It never fails: absent or wrongly typed
// values degrade to the most restrictive interpretation.
func FromFields(fields map[string]any) Record {
	lower := make(map[string]any, len(fields))
	for k, v := range fields {
		lower[strings.ToLower(k)] = v
	}
	lookup := func(canonical string) (any, bool) {
		for _, alias := range fieldAliases[canonical] {
			if v, ok := lower[strings.ToLower(alias)]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}
	text := func(canonical string) string {
		v, ok := lookup(canonical)
		if !ok {
			return ""
		}
		s, _ := asText(v)
		return s
	}

	r := Record{
		ID:             text("id"),
		Name:           text("name"),
		Email:          text("email"),
		ProductTier:    text("productTier"),
		Package:        text("package"),
		MembershipType: text("membershipType"),
	}

	if v, ok := lookup("accountActive"); ok {
		r.AccountActive = gateText(v)
	}
	if v, ok := lookup("parentConsent"); ok {
		r.ParentConsent = gateText(v)
	}
	if v, ok := lookup("waiverStatus"); ok {
		r.WaiverStatus = waiverMalformed
		if s, isText := v.(string); isText {
			r.WaiverStatus = s
		}
	}

	if v, ok := lookup("isFullAccess"); ok {
		r.Access.IsFullAccess = truthy(v)
	}
	if nested, ok := lower["access"].(map[string]any); ok {
		for k, v := range nested {
			if strings.EqualFold(k, "isFullAccess") && truthy(v) {
				r.Access.IsFullAccess = true
			}
		}
	}

	r.Metrics = collectMetrics(fields)
	return r
}

// gateText keeps a gate field only when it is text. Booleans, numbers and
// objects yield "" so the gate fails.
func gateText(v any) string {
	s, _ := v.(string)
	return s
}

// truthy accepts only a real boolean true or an explicit textual yes.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch NormalizeKey(t) {
		case "true", "yes", "1":
			return true
		}
	}
	return false
}

// asText converts scalar JSON values to text. Objects and arrays are rejected.
func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// collectMetrics keeps every numeric field that is not a known record field,
// plus anything under a nested "metrics" object.
func collectMetrics(fields map[string]any) map[string]float64 {
	out := make(map[string]float64)
	for k, v := range fields {
		if known[strings.ToLower(k)] {
			continue
		}
		if f, ok := asFloat(v); ok {
			out[k] = f
		}
	}
	if nested, ok := fields["metrics"].(map[string]any); ok {
		for k, v := range nested {
			if f, ok := asFloat(v); ok {
				out[k] = f
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// asFloat accepts JSON numbers and numeric strings.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return ParseMetric(t)
	}
	return 0, false
}

// ParseMetric parses a metric cell, tolerating a trailing percent sign.
// NaN and infinities are not metrics.
func ParseMetric(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// DecodeJSON decodes a single JSON object into a Record via FromFields.
func DecodeJSON(data []byte) (Record, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, fmt.Errorf("decode athlete record: %w", err)
	}
	return FromFields(fields), nil
}

// DecodeJSONRecords decodes either one JSON object or an array of objects.
func DecodeJSONRecords(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		rec, err := DecodeJSON(trimmed)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode athlete records: %w", err)
	}
	out := make([]Record, 0, len(items))
	for i, item := range items {
		rec, err := DecodeJSON(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
