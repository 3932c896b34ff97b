// Package claimflow holds the claim lifecycle driven by adjudication verdicts.
package claimflow

import (
	"fmt"
	"sync"

	"github.com/garyjia/claims-intake/internal/domain/adjudication"
)

// lifecycle is built on first use so it never depends on package init order.
var lifecycle = sync.OnceValue(func() StateMachineBuilder {
	b := NewBuilder()
	for _, from := range []State{StateNew, StateInReview} {
		b.Configure(from).
			Permit(TriggerAutoApprove, StateAutoApproved).
			Permit(TriggerRequestReview, StateInReview).
			Permit(TriggerReject, StateRejected)
	}
	return b
})

// ForClaim returns a lifecycle machine positioned at a stored claim status.
func ForClaim(status string) (StateMachine, error) {
	state := State(status)
	if !state.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, status)
	}
	return lifecycle().Build(state), nil
}

// TriggerFor maps a verdict to the lifecycle trigger it fires.
func TriggerFor(status adjudication.Status) (Trigger, error) {
	switch status {
	case adjudication.StatusApproved:
		return TriggerAutoApprove, nil
	case adjudication.StatusManualReview:
		return TriggerRequestReview, nil
	case adjudication.StatusRejected:
		return TriggerReject, nil
	default:
		return "", fmt.Errorf("unknown verdict status %q", status)
	}
}
