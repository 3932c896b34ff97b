package claimflow

// Trigger is an event that moves a claim between states
type Trigger string

const (
	TriggerAutoApprove   Trigger = "AUTO_APPROVE"
	TriggerRequestReview Trigger = "REQUEST_REVIEW"
	TriggerReject        Trigger = "REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
