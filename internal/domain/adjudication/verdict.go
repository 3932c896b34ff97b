package adjudication

import (
	"encoding/json"
	"strings"
)

// Status is the outcome of an adjudication.
type Status string

const (
	StatusApproved     Status = "Approved"
	StatusManualReview Status = "Manual Review"
	StatusRejected     Status = "Rejected"
)

// String returns the display form of the status
func (s Status) String() string {
	return string(s)
}

// Guardrail identifies the check that produced a finding.
type Guardrail string

const (
	GuardrailPolicyActive      Guardrail = "policy_active"
	GuardrailAutoApproveCap    Guardrail = "auto_approve_cap"
	GuardrailFraudScore        Guardrail = "fraud_score"
	GuardrailAIRedFlags        Guardrail = "ai_red_flags"
	GuardrailAIConfidence      Guardrail = "ai_confidence"
	GuardrailCoverageAvailable Guardrail = "coverage_available"
)

// ApprovedReason is shown for a claim that passed every guardrail.
const ApprovedReason = "Passed all auto-adjudication guardrails."

// ReasonSeparator joins findings into the display reason.
const ReasonSeparator = " | "

// Finding is one fired guardrail.
type Finding struct {
	Guardrail Guardrail `json:"guardrail"`
	Message   string    `json:"message"`
}

// Verdict is the result of Engine.Evaluate. Findings keep evaluation order.
type Verdict struct {
	Status   Status
	Findings []Finding
}

// Reasons returns the finding messages in evaluation order.
func (v Verdict) Reasons() []string {
	reasons := make([]string, 0, len(v.Findings))
	for _, f := range v.Findings {
		reasons = append(reasons, f.Message)
	}
	return reasons
}

// Guardrails returns the fired guardrails in evaluation order.
func (v Verdict) Guardrails() []Guardrail {
	out := make([]Guardrail, 0, len(v.Findings))
	for _, f := range v.Findings {
		out = append(out, f.Guardrail)
	}
	return out
}

// Reason returns the human readable summary.
func (v Verdict) Reason() string {
	if len(v.Findings) == 0 {
		return ApprovedReason
	}
	return strings.Join(v.Reasons(), ReasonSeparator)
}

// MarshalJSON writes the verdict with its display reason alongside the findings.
func (v Verdict) MarshalJSON() ([]byte, error) {
	findings := v.Findings
	if findings == nil {
		findings = []Finding{}
	}
	return json.Marshal(struct {
		Status   Status    `json:"status"`
		Reason   string    `json:"reason"`
		Findings []Finding `json:"findings"`
	}{
		Status:   v.Status,
		Reason:   v.Reason(),
		Findings: findings,
	})
}
