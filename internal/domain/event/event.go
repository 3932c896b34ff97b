// Package event defines the notifications published after a claim change has
// been committed.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

// Payload keys
const (
	KeyPolicyNumber   = "policy_number"
	KeyPhotoID        = "photo_id"
	KeySizeBytes      = "size_bytes"
	KeyVerdict        = "verdict"
	KeyPreviousStatus = "previous_status"
	KeyNewStatus      = "new_status"
)

// Event is a committed claim change
type Event struct {
	ID          string                 `json:"id"`
	Type        Type                   `json:"type"`
	ClaimID     string                 `json:"claim_id"`
	ClaimNumber string                 `json:"claim_number"`
	Payload     map[string]interface{} `json:"payload"`
	Timestamp   time.Time              `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and the current UTC time
func NewEvent(eventType Type, claimID, claimNumber string, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ClaimID:     claimID,
		ClaimNumber: claimNumber,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
	}
}

// ClaimCreated is published once a new claim is stored
func ClaimCreated(claimID, claimNumber, policyNumber string) *Event {
	return NewEvent(TypeClaimCreated, claimID, claimNumber, map[string]interface{}{
		KeyPolicyNumber: policyNumber,
	})
}

// PhotoUploaded is published once a photo is stored and recorded
func PhotoUploaded(claimID, claimNumber, photoID string, size int) *Event {
	return NewEvent(TypePhotoUploaded, claimID, claimNumber, map[string]interface{}{
		KeyPhotoID:   photoID,
		KeySizeBytes: size,
	})
}

// ClaimAdjudicated is published once a verdict and the resulting status are committed
func ClaimAdjudicated(claimID, claimNumber string, verdict adjudication.Verdict, previousStatus, newStatus string) *Event {
	return NewEvent(TypeClaimAdjudicated, claimID, claimNumber, map[string]interface{}{
		KeyVerdict:        verdict,
		KeyPreviousStatus: previousStatus,
		KeyNewStatus:      newStatus,
	})
}

// WithPayload returns a copy of the event with key set
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	clone := *e
	clone.Payload = payload
	return &clone
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}

// GetPayloadInt retrieves an integer value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	switch v := e.Payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Verdict returns the adjudication verdict carried by a claim.adjudicated event
func (e *Event) Verdict() (adjudication.Verdict, bool) {
	v, ok := e.Payload[KeyVerdict].(adjudication.Verdict)
	return v, ok
}
