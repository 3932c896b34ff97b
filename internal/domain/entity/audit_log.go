package entity

import "time"

// ClaimAuditLog is an append-only record of something that happened to a claim
type ClaimAuditLog struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claim_id"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performed_by"`
	Details     string    `json:"details"` // JSON document
	CreatedAt   time.Time `json:"created_at"`
}

// AdjudicationDetails is the Details document written for an auto_adjudication entry
type AdjudicationDetails struct {
	Status         string            `json:"status"`
	Reason         string            `json:"reason"`
	Guardrails     []string          `json:"guardrails"`
	Reasons        []string          `json:"reasons"`
	PreviousStatus string            `json:"previous_status"`
	NewStatus      string            `json:"new_status"`
	Inputs         map[string]string `json:"inputs"`
}
