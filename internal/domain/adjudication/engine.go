// Package adjudication decides whether a claim may be paid without human review.
//
// Every guardrail is deterministic. The AI damage assessment contributes a
// confidence and a list of red flags, but neither can approve a claim on its
// own: a claim is approved only when the policy is active and no guardrail fires.
package adjudication

import (
	"fmt"
	"math"
	"strings"
)

// Default guardrail limits.
const (
	DefaultMaxAutoApproveAmount = 2000.00
	DefaultRequiredAIConfidence = 0.90
	DefaultMaxFraudScore        = 10 // 0-100 scale, 0 is no risk
)

// Thresholds are the business limits the guardrails compare against.
type Thresholds struct {
	MaxAutoApproveAmount float64 `mapstructure:"max_auto_approve_amount" json:"max_auto_approve_amount"`
	RequiredAIConfidence float64 `mapstructure:"required_ai_confidence" json:"required_ai_confidence"`
	MaxFraudScore        float64 `mapstructure:"max_fraud_score" json:"max_fraud_score"`
}

// DefaultThresholds returns the standard limits
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxAutoApproveAmount: DefaultMaxAutoApproveAmount,
		RequiredAIConfidence: DefaultRequiredAIConfidence,
		MaxFraudScore:        DefaultMaxFraudScore,
	}
}

// Validate ensures the limits are usable
func (t Thresholds) Validate() error {
	if math.IsNaN(t.MaxAutoApproveAmount) || t.MaxAutoApproveAmount < 0 {
		return fmt.Errorf("MaxAutoApproveAmount must be >= 0, got %v", t.MaxAutoApproveAmount)
	}

	if math.IsNaN(t.RequiredAIConfidence) || t.RequiredAIConfidence < 0.0 || t.RequiredAIConfidence > 1.0 {
		return fmt.Errorf("RequiredAIConfidence must be between 0.0 and 1.0, got %.2f", t.RequiredAIConfidence)
	}

	if math.IsNaN(t.MaxFraudScore) || t.MaxFraudScore < 0 || t.MaxFraudScore > 100 {
		return fmt.Errorf("MaxFraudScore must be between 0 and 100, got %v", t.MaxFraudScore)
	}

	return nil
}

// Engine evaluates claims against a fixed set of thresholds. The zero value is
// not useful; build one with New or use Default.
type Engine struct {
	thresholds Thresholds
}

// New creates an engine after validating the thresholds.
func New(t Thresholds) (Engine, error) {
	if err := t.Validate(); err != nil {
		return Engine{}, fmt.Errorf("invalid thresholds: %w", err)
	}
	return Engine{thresholds: t}, nil
}

// Default returns an engine using DefaultThresholds.
func Default() Engine {
	return Engine{thresholds: DefaultThresholds()}
}

// Thresholds returns the limits this engine applies.
func (e Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate runs the guardrails for one claim.
//
// An inactive or unknown policy rejects the claim and nothing else is checked.
// Otherwise every guardrail runs and each one that fires adds a finding, in
// this order: auto-approval cap, fraud score, AI red flags, AI confidence,
// coverage. Any finding sends the claim to manual review.
func (e Engine) Evaluate(claim ClaimSnapshot, policy PolicySnapshot, analysis AIAnalysisSnapshot, fraudScore Number) Verdict {
	if !policy.IsActive() {
		return Verdict{
			Status: StatusRejected,
			Findings: []Finding{{
				Guardrail: GuardrailPolicyActive,
				Message:   "Policy is not active.",
			}},
		}
	}

	t := e.thresholds
	var findings []Finding

	cost := claim.EstimatedDamageCost.Float64()
	if cost > t.MaxAutoApproveAmount {
		findings = append(findings, Finding{
			Guardrail: GuardrailAutoApproveCap,
			Message: fmt.Sprintf("Estimated cost ($%s) exceeds auto-approval limit ($%s).",
				formatAmount(cost), formatAmount(t.MaxAutoApproveAmount)),
		})
	}

	fraud := fraudScore.Float64()
	if fraud > t.MaxFraudScore {
		findings = append(findings, Finding{
			Guardrail: GuardrailFraudScore,
			Message: fmt.Sprintf("Fraud score (%s) exceeds acceptable limit (%s).",
				formatAmount(fraud), formatLimit(t.MaxFraudScore)),
		})
	}

	// Red flags force review even when confidence is high.
	if len(analysis.RedFlags) > 0 {
		findings = append(findings, Finding{
			Guardrail: GuardrailAIRedFlags,
			Message:   fmt.Sprintf("AI identified red flags: %s.", strings.Join(analysis.RedFlags, ", ")),
		})
	}

	confidence := analysis.Confidence.Float64()
	if confidence < t.RequiredAIConfidence {
		findings = append(findings, Finding{
			Guardrail: GuardrailAIConfidence,
			Message: fmt.Sprintf("AI confidence (%s) is below required threshold (%s).",
				formatAmount(confidence), formatAmount(t.RequiredAIConfidence)),
		})
	}

	// Missing coverage fields both read as 0, so any positive cost fails here.
	available := policy.CoverageLimit.Float64() - policy.Deductible.Float64()
	if cost > available {
		findings = append(findings, Finding{
			Guardrail: GuardrailCoverageAvailable,
			Message: fmt.Sprintf("Estimated cost ($%s) exceeds coverage limit minus deductible ($%s).",
				formatAmount(cost), formatAmount(available)),
		})
	}

	if len(findings) > 0 {
		return Verdict{Status: StatusManualReview, Findings: findings}
	}
	return Verdict{Status: StatusApproved}
}

// Evaluate runs the guardrails with the default thresholds.
func Evaluate(claim ClaimSnapshot, policy PolicySnapshot, analysis AIAnalysisSnapshot, fraudScore Number) Verdict {
	return Default().Evaluate(claim, policy, analysis, fraudScore)
}
