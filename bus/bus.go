// Package bus delivers domain events to subscribers after a unit of work
// commits.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"auditkit/audit"
)

// Handler processes a single published event.
type Handler func(ctx context.Context, e audit.Event) error

// Bus publishes domain events to interested subscribers. Publish returns an
// error when any subscriber fails; retry policy belongs to the bus
// implementation or its subscribers, not to the caller.
type Bus interface {
	Publish(ctx context.Context, e audit.Event) error
}

// Memory is an in-process Bus with a per-event-name subscriber registry.
// Handlers run synchronously, in subscription order. Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

// NewMemory returns an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{handlers: map[string][]Handler{}}
}

// Subscribe registers a handler for events with the given name.
func (b *Memory) Subscribe(eventName string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], h)
}

// SubscribeAll registers a handler invoked for every published event, after
// the name-specific handlers.
func (b *Memory) SubscribeAll(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish invokes every matching subscriber. All subscribers run even when an
// earlier one fails; their errors are joined into the returned error.
func (b *Memory) Publish(ctx context.Context, e audit.Event) error {
	if e == nil {
		return nil
	}
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[e.EventName()])+len(b.all))
	handlers = append(handlers, b.handlers[e.EventName()]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("handle %s: %w", e.EventName(), err))
		}
	}
	return errors.Join(errs...)
}

var _ Bus = (*Memory)(nil)
