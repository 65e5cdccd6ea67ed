package entitlement

import (
	"encoding/json"
	"strings"

	"athleteportal/internal/domain/athlete"
)

// Reason identifies which safety gate blocked an athlete.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonInactiveAccount Reason = "inactive_account"
	ReasonWaiverRequired  Reason = "waiver_required"
	ReasonConsentRequired Reason = "consent_required"
)

// GateResult is either Passed or Blocked with the first failing reason.
type GateResult struct {
	Reason Reason
}

// Passed is the result when every gate holds.
var Passed = GateResult{}

// Blocked returns a failed gate result.
func Blocked(reason Reason) GateResult {
	return GateResult{Reason: reason}
}

// IsBlocked reports whether a gate failed.
func (g GateResult) IsBlocked() bool {
	return g.Reason != ReasonNone
}

// String renders "passed" or "blocked:<reason>".
func (g GateResult) String() string {
	if !g.IsBlocked() {
		return "passed"
	}
	return "blocked:" + string(g.Reason)
}

// MarshalJSON renders {"status":"passed"} or {"status":"blocked","reason":...}.
func (g GateResult) MarshalJSON() ([]byte, error) {
	payload := struct {
		Status string `json:"status"`
		Reason Reason `json:"reason,omitempty"`
	}{Status: "passed"}
	if g.IsBlocked() {
		payload.Status = "blocked"
		payload.Reason = g.Reason
	}
	return json.Marshal(payload)
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (g *GateResult) UnmarshalJSON(data []byte) error {
	var payload struct {
		Status string `json:"status"`
		Reason Reason `json:"reason"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	g.Reason = ReasonNone
	if payload.Status == "blocked" {
		g.Reason = payload.Reason
	}
	return nil
}

// gate is one ordered precondition. ok must treat missing input as failing
// unless the rule explicitly allows absence.
type gate struct {
	reason Reason
	ok     func(r athlete.Record) bool
}

// gates are evaluated in this order; the first failure wins.
var gates = []gate{
	{reason: ReasonInactiveAccount, ok: paymentOK},
	{reason: ReasonWaiverRequired, ok: waiverOK},
	{reason: ReasonConsentRequired, ok: consentOK},
}

// EvaluateGates runs the payment, waiver and consent gates in order and
// stops at the first failure.
// INVARIANT: r is not mutated
func EvaluateGates(r athlete.Record) GateResult {
	for _, g := range gates {
		if !g.ok(r) {
			return Blocked(g.reason)
		}
	}
	return Passed
}

func paymentOK(r athlete.Record) bool {
	return strings.EqualFold(strings.TrimSpace(r.AccountActive), "YES")
}

// waiverOK passes when no waiver status was supplied at all.
func waiverOK(r athlete.Record) bool {
	status := strings.TrimSpace(r.WaiverStatus)
	if status == "" {
		return true
	}
	return strings.EqualFold(status, "signed")
}

func consentOK(r athlete.Record) bool {
	return strings.EqualFold(strings.TrimSpace(r.ParentConsent), "yes")
}
