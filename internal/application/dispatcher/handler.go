package dispatcher

import (
	"context"

	"github.com/garyjia/claims-intake/internal/domain/event"
)

// Handler reacts to a committed claim event
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo describes a registered handler
type HandlerInfo struct {
	Name      string
	EventType event.Type
}

type subscription struct {
	name    string
	handler Handler
}
