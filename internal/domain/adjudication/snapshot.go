package adjudication

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cast"
)

// ClaimSnapshot is the claim data the guardrails read.
type ClaimSnapshot struct {
	EstimatedDamageCost Number `json:"estimated_damage_cost"`
}

// PolicySnapshot is the policy data the guardrails read. An empty Status means
// the policy state is unknown.
type PolicySnapshot struct {
	Status        string `json:"status"`
	CoverageLimit Number `json:"coverage_limit"`
	Deductible    Number `json:"deductible"`
}

// IsActive reports whether the status is "active" in any letter case.
func (p PolicySnapshot) IsActive() bool {
	return p.Status != "" && strings.ToUpper(p.Status) == "ACTIVE"
}

// UnmarshalJSON tolerates a non-string status by treating it as unknown.
func (p *PolicySnapshot) UnmarshalJSON(b []byte) error {
	var raw struct {
		Status        any    `json:"status"`
		CoverageLimit Number `json:"coverage_limit"`
		Deductible    Number `json:"deductible"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	status, _ := raw.Status.(string)
	*p = PolicySnapshot{
		Status:        status,
		CoverageLimit: raw.CoverageLimit,
		Deductible:    raw.Deductible,
	}
	return nil
}

// AIAnalysisSnapshot is the output of the damage assessment provider.
type AIAnalysisSnapshot struct {
	Confidence Number   `json:"confidence"`
	RedFlags   []string `json:"red_flags"`
}

// UnmarshalJSON tolerates loosely typed red flags: array elements are
// stringified and a bare string counts as a single flag.
func (a *AIAnalysisSnapshot) UnmarshalJSON(b []byte) error {
	var raw struct {
		Confidence Number `json:"confidence"`
		RedFlags   any    `json:"red_flags"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*a = AIAnalysisSnapshot{
		Confidence: raw.Confidence,
		RedFlags:   flagsOf(raw.RedFlags),
	}
	return nil
}

func flagsOf(v any) []string {
	switch flags := v.(type) {
	case []any:
		out := make([]string, 0, len(flags))
		for _, f := range flags {
			if f == nil {
				continue
			}
			out = append(out, cast.ToString(f))
		}
		return out
	case string:
		if flags == "" {
			return nil
		}
		return []string{flags}
	default:
		return nil
	}
}
