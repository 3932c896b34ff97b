// Package dispatcher fans committed claim events out to in-process handlers.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/event"
)

// ErrClosed is returned by Publish after Close
var ErrClosed = errors.New("dispatcher is closed")

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Dispatcher delivers each event to every handler subscribed to its type, in
// subscription order. A failing or panicking handler does not stop the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]subscription
	logger   Logger
	closed   atomic.Bool
}

// Option configures the dispatcher
type Option func(*Dispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[event.Type][]subscription),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers handler under name. An existing handler with the same
// name and type is replaced.
func (d *Dispatcher) Subscribe(eventType event.Type, name string, handler Handler) error {
	if !eventType.IsValid() {
		return fmt.Errorf("unknown event type %q", eventType)
	}
	if handler == nil {
		return fmt.Errorf("handler %q is nil", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.handlers[eventType]
	for i, s := range subs {
		if s.name == name {
			subs[i].handler = handler
			return nil
		}
	}
	d.handlers[eventType] = append(subs, subscription{name: name, handler: handler})

	d.logInfo("Handler registered", "event_type", eventType, "handler_name", name)
	return nil
}

// Unsubscribe removes a handler by name
func (d *Dispatcher) Unsubscribe(eventType event.Type, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.handlers[eventType]
	kept := subs[:0:0]
	for _, s := range subs {
		if s.name != name {
			kept = append(kept, s)
		}
	}
	d.handlers[eventType] = kept
}

// Handlers lists the handlers registered for eventType in delivery order
func (d *Dispatcher) Handlers(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]HandlerInfo, 0, len(d.handlers[eventType]))
	for _, s := range d.handlers[eventType] {
		out = append(out, HandlerInfo{Name: s.name, EventType: eventType})
	}
	return out
}

// Publish runs every handler for the event synchronously and returns the
// joined handler errors.
func (d *Dispatcher) Publish(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if evt == nil {
		return fmt.Errorf("event is nil")
	}

	d.mu.RLock()
	subs := append([]subscription(nil), d.handlers[evt.Type]...)
	d.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := d.safeExecute(ctx, evt, s); err != nil {
			d.logError("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"claim_id", evt.ClaimID,
				"handler_name", s.name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("handler %s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close stops accepting events
func (d *Dispatcher) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dispatcher already closed")
	}
	d.logInfo("Dispatcher closed")
	return nil
}

func (d *Dispatcher) safeExecute(ctx context.Context, evt *event.Event, s subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.handler(ctx, evt)
}

func (d *Dispatcher) logInfo(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, keysAndValues...)
	}
}

func (d *Dispatcher) logError(msg string, keysAndValues ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, keysAndValues...)
	}
}

var _ port.EventPublisher = (*Dispatcher)(nil)
