package claimflow

// State is a claim's position in the adjudication lifecycle
type State string

const (
	StateNew          State = "New"
	StateAutoApproved State = "Auto Approved"
	StateInReview     State = "In Review"
	StateRejected     State = "Rejected"
)

// IsTerminal returns true if no further adjudication is allowed from this state
func (s State) IsTerminal() bool {
	return s == StateAutoApproved || s == StateRejected
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	switch s {
	case StateNew, StateAutoApproved, StateInReview, StateRejected:
		return true
	default:
		return false
	}
}
