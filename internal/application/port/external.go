package port

import (
	"context"

	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/domain/event"
)

// PolicyDirectory looks up policies by number
type PolicyDirectory interface {
	// Get returns nil, nil when the policy is unknown
	Get(ctx context.Context, policyNumber string) (*entity.Policy, error)
}

// EventPublisher delivers committed claim events to subscribers
type EventPublisher interface {
	Publish(ctx context.Context, evt *event.Event) error
}
