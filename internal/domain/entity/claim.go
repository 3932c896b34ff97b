package entity

import (
	"time"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

// Claim represents a first notice of loss submitted against a policy
type Claim struct {
	ID                  string        `json:"id"`
	PolicyNumber        string        `json:"policy_number"`
	ClaimNumber         string        `json:"claim_number"`
	ClaimantName        string        `json:"claimant_name"`
	ClaimantPhone       string        `json:"claimant_phone"`
	ClaimantEmail       string        `json:"claimant_email"`
	IncidentDate        *time.Time    `json:"incident_date,omitempty"`
	IncidentLocation    string        `json:"incident_location"`
	IncidentDescription string        `json:"incident_description"`
	VehicleVIN          string        `json:"vehicle_vin,omitempty"`
	VehicleMake         string        `json:"vehicle_make,omitempty"`
	VehicleModel        string        `json:"vehicle_model,omitempty"`
	VehicleYear         *int          `json:"vehicle_year,omitempty"`
	Status              string        `json:"status"`
	EstimatedDamageCost *float64      `json:"estimated_damage_cost,omitempty"`
	ApprovedAmount      *float64      `json:"approved_amount,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
	Photos              []*ClaimPhoto `json:"photos"`
}

// Snapshot returns the claim fields read by the guardrail engine
func (c *Claim) Snapshot() adjudication.ClaimSnapshot {
	if c == nil || c.EstimatedDamageCost == nil {
		return adjudication.ClaimSnapshot{}
	}
	return adjudication.ClaimSnapshot{EstimatedDamageCost: adjudication.Float(*c.EstimatedDamageCost)}
}
