package adjudication

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClaim() ClaimSnapshot {
	return ClaimSnapshot{EstimatedDamageCost: Float(1500)}
}

func validPolicy() PolicySnapshot {
	return PolicySnapshot{
		Status:        "Active",
		CoverageLimit: Float(50000),
		Deductible:    Float(500),
	}
}

func validAnalysis() AIAnalysisSnapshot {
	return AIAnalysisSnapshot{Confidence: Float(0.95), RedFlags: []string{}}
}

func TestEvaluate_AutoApprovesValidClaim(t *testing.T) {
	verdict := Evaluate(validClaim(), validPolicy(), validAnalysis(), NumberOf(5))

	assert.Equal(t, StatusApproved, verdict.Status)
	assert.Empty(t, verdict.Findings)
	assert.Equal(t, ApprovedReason, verdict.Reason())
}

func TestEvaluate_RejectsInactivePolicy(t *testing.T) {
	policy := validPolicy()
	policy.Status = "Expired"

	verdict := Evaluate(validClaim(), policy, validAnalysis(), NumberOf(5))

	assert.Equal(t, StatusRejected, verdict.Status)
	assert.Equal(t, "Policy is not active.", verdict.Reason())
	assert.Equal(t, []Guardrail{GuardrailPolicyActive}, verdict.Guardrails())
}

func TestEvaluate_PolicyGateShortCircuits(t *testing.T) {
	// Every other guardrail would fire here; only the policy reason may appear.
	claim := ClaimSnapshot{EstimatedDamageCost: Float(999999)}
	analysis := AIAnalysisSnapshot{Confidence: Float(0.1), RedFlags: []string{"staged"}}

	statuses := []string{"", "Expired", "Cancelled", "inactive", " Active", "Active ", "ACTIVE!"}
	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			policy := PolicySnapshot{Status: status}
			verdict := Evaluate(claim, policy, analysis, NumberOf(99))

			assert.Equal(t, StatusRejected, verdict.Status)
			assert.Equal(t, "Policy is not active.", verdict.Reason())
			assert.Len(t, verdict.Findings, 1)
		})
	}
}

func TestEvaluate_PolicyStatusIsCaseInsensitive(t *testing.T) {
	for _, status := range []string{"active", "ACTIVE", "Active", "aCtIvE"} {
		t.Run(status, func(t *testing.T) {
			policy := validPolicy()
			policy.Status = status
			verdict := Evaluate(validClaim(), policy, validAnalysis(), NumberOf(5))
			assert.Equal(t, StatusApproved, verdict.Status)
		})
	}
}

func TestEvaluate_SingleGuardrails(t *testing.T) {
	tests := []struct {
		name      string
		claim     ClaimSnapshot
		policy    PolicySnapshot
		analysis  AIAnalysisSnapshot
		fraud     Number
		guardrail Guardrail
		contains  string
	}{
		{
			name:      "high cost",
			claim:     ClaimSnapshot{EstimatedDamageCost: Float(2500)},
			policy:    validPolicy(),
			analysis:  validAnalysis(),
			fraud:     NumberOf(5),
			guardrail: GuardrailAutoApproveCap,
			contains:  "Estimated cost ($2500.0) exceeds auto-approval limit ($2000.0).",
		},
		{
			name:      "high fraud score",
			claim:     validClaim(),
			policy:    validPolicy(),
			analysis:  validAnalysis(),
			fraud:     NumberOf(15),
			guardrail: GuardrailFraudScore,
			contains:  "Fraud score (15.0) exceeds acceptable limit (10)",
		},
		{
			name:      "red flags",
			claim:     validClaim(),
			policy:    validPolicy(),
			analysis:  AIAnalysisSnapshot{Confidence: Float(0.99), RedFlags: []string{"Possible pre-existing damage", "Mismatched VIN"}},
			fraud:     NumberOf(5),
			guardrail: GuardrailAIRedFlags,
			contains:  "AI identified red flags: Possible pre-existing damage, Mismatched VIN.",
		},
		{
			name:      "low confidence",
			claim:     validClaim(),
			policy:    validPolicy(),
			analysis:  AIAnalysisSnapshot{Confidence: Float(0.85)},
			fraud:     NumberOf(5),
			guardrail: GuardrailAIConfidence,
			contains:  "AI confidence (0.85) is below required threshold (0.9)",
		},
		{
			name:  "exceeds coverage",
			claim: validClaim(),
			policy: PolicySnapshot{
				Status:        "Active",
				CoverageLimit: Float(1000),
				Deductible:    Float(0),
			},
			analysis:  validAnalysis(),
			fraud:     NumberOf(5),
			guardrail: GuardrailCoverageAvailable,
			contains:  "Estimated cost ($1500.0) exceeds coverage limit minus deductible ($1000.0).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.claim, tt.policy, tt.analysis, tt.fraud)

			assert.Equal(t, StatusManualReview, verdict.Status)
			assert.Equal(t, []Guardrail{tt.guardrail}, verdict.Guardrails())
			assert.Contains(t, verdict.Reason(), tt.contains)
		})
	}
}

func TestEvaluate_AllGuardrailsReportedInOrder(t *testing.T) {
	claim := ClaimSnapshot{EstimatedDamageCost: Float(5000)}
	policy := PolicySnapshot{Status: "active", CoverageLimit: Float(3000), Deductible: Float(250)}
	analysis := AIAnalysisSnapshot{Confidence: Float(0.4), RedFlags: []string{"duplicate photo"}}

	verdict := Evaluate(claim, policy, analysis, NumberOf(42))

	require.Equal(t, StatusManualReview, verdict.Status)
	assert.Equal(t, []Guardrail{
		GuardrailAutoApproveCap,
		GuardrailFraudScore,
		GuardrailAIRedFlags,
		GuardrailAIConfidence,
		GuardrailCoverageAvailable,
	}, verdict.Guardrails())
	assert.Equal(t,
		"Estimated cost ($5000.0) exceeds auto-approval limit ($2000.0). | "+
			"Fraud score (42.0) exceeds acceptable limit (10). | "+
			"AI identified red flags: duplicate photo. | "+
			"AI confidence (0.4) is below required threshold (0.9). | "+
			"Estimated cost ($5000.0) exceeds coverage limit minus deductible ($2750.0).",
		verdict.Reason())
}

func TestEvaluate_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		claim    ClaimSnapshot
		policy   PolicySnapshot
		analysis AIAnalysisSnapshot
		fraud    Number
	}{
		{
			name:     "cost equals cap",
			claim:    ClaimSnapshot{EstimatedDamageCost: Float(2000.00)},
			policy:   validPolicy(),
			analysis: validAnalysis(),
			fraud:    NumberOf(5),
		},
		{
			name:     "fraud equals limit",
			claim:    validClaim(),
			policy:   validPolicy(),
			analysis: validAnalysis(),
			fraud:    NumberOf(10),
		},
		{
			name:     "confidence equals floor",
			claim:    validClaim(),
			policy:   validPolicy(),
			analysis: AIAnalysisSnapshot{Confidence: Float(0.90)},
			fraud:    NumberOf(5),
		},
		{
			name:     "cost equals coverage minus deductible",
			claim:    ClaimSnapshot{EstimatedDamageCost: Float(1500)},
			policy:   PolicySnapshot{Status: "Active", CoverageLimit: Float(2000), Deductible: Float(500)},
			analysis: validAnalysis(),
			fraud:    NumberOf(5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.claim, tt.policy, tt.analysis, tt.fraud)
			assert.Equal(t, StatusApproved, verdict.Status, verdict.Reason())
		})
	}
}

func TestEvaluate_MissingInputs(t *testing.T) {
	t.Run("everything missing rejects", func(t *testing.T) {
		verdict := Evaluate(ClaimSnapshot{}, PolicySnapshot{}, AIAnalysisSnapshot{}, Number{})
		assert.Equal(t, StatusRejected, verdict.Status)
	})

	t.Run("only status present", func(t *testing.T) {
		verdict := Evaluate(ClaimSnapshot{}, PolicySnapshot{Status: "ACTIVE"}, AIAnalysisSnapshot{}, Number{})

		assert.Equal(t, StatusManualReview, verdict.Status)
		assert.Equal(t, []Guardrail{GuardrailAIConfidence}, verdict.Guardrails())
		assert.Contains(t, verdict.Reason(), "AI confidence (0.0) is below required threshold (0.9)")
	})

	t.Run("missing coverage fails any positive cost", func(t *testing.T) {
		claim := ClaimSnapshot{EstimatedDamageCost: Float(0.01)}
		verdict := Evaluate(claim, PolicySnapshot{Status: "Active"}, validAnalysis(), Number{})

		assert.Equal(t, StatusManualReview, verdict.Status)
		assert.Equal(t, []Guardrail{GuardrailCoverageAvailable}, verdict.Guardrails())
		assert.Contains(t, verdict.Reason(), "exceeds coverage limit minus deductible ($0.0)")
	})
}

func TestEvaluate_GarbageNumbersCoerceToZero(t *testing.T) {
	claim := ClaimSnapshot{EstimatedDamageCost: NumberOf("not a number")}
	analysis := AIAnalysisSnapshot{Confidence: NumberOf(map[string]any{"x": 1})}

	verdict := Evaluate(claim, validPolicy(), analysis, NumberOf([]int{1, 2}))

	assert.Equal(t, StatusManualReview, verdict.Status)
	assert.Equal(t, []Guardrail{GuardrailAIConfidence}, verdict.Guardrails())
	assert.Contains(t, verdict.Reason(), "AI confidence (0.0)")
}

func TestEvaluate_NaNConfidenceStillFiresGuardrail(t *testing.T) {
	analysis := AIAnalysisSnapshot{Confidence: NumberOf("NaN")}

	verdict := Evaluate(ClaimSnapshot{EstimatedDamageCost: Float(500)}, validPolicy(), analysis, Float(0))

	assert.Equal(t, StatusManualReview, verdict.Status)
	assert.Equal(t, []Guardrail{GuardrailAIConfidence}, verdict.Guardrails())
	assert.Equal(t, "AI confidence (0.0) is below required threshold (0.9).", verdict.Reason())
}

func TestEvaluate_NumericStrings(t *testing.T) {
	claim := ClaimSnapshot{EstimatedDamageCost: NumberOf("1500.00")}
	policy := PolicySnapshot{Status: "Active", CoverageLimit: NumberOf("50000"), Deductible: NumberOf(" 500 ")}
	analysis := AIAnalysisSnapshot{Confidence: NumberOf("0.95")}

	verdict := Evaluate(claim, policy, analysis, NumberOf("5"))
	assert.Equal(t, StatusApproved, verdict.Status, verdict.Reason())
}

func TestEvaluate_FromJSONSnapshots(t *testing.T) {
	var in struct {
		Claim      ClaimSnapshot      `json:"claim"`
		Policy     PolicySnapshot     `json:"policy"`
		AIAnalysis AIAnalysisSnapshot `json:"ai_analysis"`
		FraudScore Number             `json:"fraud_score"`
	}
	payload := `{
		"claim": {"estimated_damage_cost": null},
		"policy": {"status": "ACTIVE", "coverage_limit": null, "deductible": null},
		"ai_analysis": {"confidence": null, "red_flags": null},
		"fraud_score": null
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &in))

	verdict := Evaluate(in.Claim, in.Policy, in.AIAnalysis, in.FraudScore)

	assert.Equal(t, StatusManualReview, verdict.Status)
	assert.Contains(t, verdict.Reason(), "AI confidence (0.0) is below required threshold (0.9)")
}

func TestEngine_CustomThresholds(t *testing.T) {
	engine, err := New(Thresholds{
		MaxAutoApproveAmount: 1000,
		RequiredAIConfidence: 0.5,
		MaxFraudScore:        2.5,
	})
	require.NoError(t, err)

	verdict := engine.Evaluate(validClaim(), validPolicy(), AIAnalysisSnapshot{Confidence: Float(0.6)}, NumberOf(3))

	assert.Equal(t, []Guardrail{GuardrailAutoApproveCap, GuardrailFraudScore}, verdict.Guardrails())
	assert.Contains(t, verdict.Reason(), "auto-approval limit ($1000.0)")
	assert.Contains(t, verdict.Reason(), "acceptable limit (2.5)")
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name          string
		thresholds    Thresholds
		expectError   bool
		errorContains string
	}{
		{
			name:       "defaults",
			thresholds: DefaultThresholds(),
		},
		{
			name:          "negative amount",
			thresholds:    Thresholds{MaxAutoApproveAmount: -1, RequiredAIConfidence: 0.9, MaxFraudScore: 10},
			expectError:   true,
			errorContains: "MaxAutoApproveAmount",
		},
		{
			name:          "confidence above one",
			thresholds:    Thresholds{MaxAutoApproveAmount: 2000, RequiredAIConfidence: 1.5, MaxFraudScore: 10},
			expectError:   true,
			errorContains: "RequiredAIConfidence must be between 0.0 and 1.0",
		},
		{
			name:          "fraud limit above scale",
			thresholds:    Thresholds{MaxAutoApproveAmount: 2000, RequiredAIConfidence: 0.9, MaxFraudScore: 101},
			expectError:   true,
			errorContains: "MaxFraudScore must be between 0 and 100",
		},
		{
			name:          "nan confidence",
			thresholds:    Thresholds{MaxAutoApproveAmount: 2000, RequiredAIConfidence: math.NaN(), MaxFraudScore: 10},
			expectError:   true,
			errorContains: "RequiredAIConfidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.thresholds)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvaluate_ConcurrentCallers(t *testing.T) {
	engine := Default()
	claim := ClaimSnapshot{EstimatedDamageCost: Float(2500)}

	var wg sync.WaitGroup
	results := make([]Verdict, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Evaluate(claim, validPolicy(), validAnalysis(), NumberOf(5))
		}(i)
	}
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, StatusManualReview, v.Status)
		assert.Equal(t, []Guardrail{GuardrailAutoApproveCap}, v.Guardrails())
	}
}

func TestVerdict_MarshalJSON(t *testing.T) {
	verdict := Evaluate(validClaim(), validPolicy(), validAnalysis(), NumberOf(5))

	data, err := json.Marshal(verdict)
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"Approved","reason":"Passed all auto-adjudication guardrails.","findings":[]}`, string(data))
}
