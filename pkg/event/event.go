// Package event provides a small in-process event bus.
//
// SmartShelf uses it to decouple session lifecycle from its consumers: the
// session manager announces logins and logouts, the backend client announces
// rejected credentials, and the query cache listens to drop per-session data.
package event

import (
	"sync"
)

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus dispatches named events to registered handlers.
// The zero value is not usable; create one with New.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
// A nil Bus drops the event.
func (b *Bus) Fire(event string, payload interface{}) {
	for _, h := range b.snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately.
func (b *Bus) FireAsync(event string, payload interface{}) {
	for _, h := range b.snapshot(event) {
		go h(payload)
	}
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func (b *Bus) snapshot(event string) []Handler {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}
