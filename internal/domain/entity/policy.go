package entity

import "github.com/garyjia/claims-intake/internal/domain/adjudication"

// Policy represents an insurance policy as returned by the policy directory
type Policy struct {
	PolicyNumber   string  `json:"policy_number" yaml:"policy_number"`
	HolderName     string  `json:"holder_name" yaml:"holder_name"`
	Status         string  `json:"status" yaml:"status"`
	VehicleInfo    string  `json:"vehicle_info" yaml:"vehicle_info"`
	CoverageLimit  float64 `json:"coverage_limit" yaml:"coverage_limit"`
	Deductible     float64 `json:"deductible" yaml:"deductible"`
	EffectiveDate  string  `json:"effective_date" yaml:"effective_date"`
	ExpirationDate string  `json:"expiration_date" yaml:"expiration_date"`
}

// Snapshot returns the policy fields read by the guardrail engine. A nil
// policy yields an empty snapshot, which the engine rejects.
func (p *Policy) Snapshot() adjudication.PolicySnapshot {
	if p == nil {
		return adjudication.PolicySnapshot{}
	}
	return adjudication.PolicySnapshot{
		Status:        p.Status,
		CoverageLimit: adjudication.Float(p.CoverageLimit),
		Deductible:    adjudication.Float(p.Deductible),
	}
}
