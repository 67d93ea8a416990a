package event

import (
	"sync"

	"github.com/bizcms/backend/internal/domain/shared"
)

// HandlerRegistry maps event types to handlers. Handlers registered without
// types are wildcards and see every event after the typed ones.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds handler for eventTypes. Registering the same handler twice
// for one type is a no-op.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = appendUnique(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.handlers[eventType] = appendUnique(r.handlers[eventType], handler)
	}
}

// Unregister removes handler everywhere
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = removeHandler(r.wildcard, handler)
	for eventType, handlers := range r.handlers {
		remaining := removeHandler(handlers, handler)
		if len(remaining) == 0 {
			delete(r.handlers, eventType)
			continue
		}
		r.handlers[eventType] = remaining
	}
}

// GetHandlers returns a snapshot of the typed then wildcard handlers
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(r.wildcard))
	result = append(result, typed...)
	return append(result, r.wildcard...)
}

// GetAllHandlers returns each registered handler once
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]struct{})
	var result []shared.EventHandler
	add := func(h shared.EventHandler) {
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		result = append(result, h)
	}
	for _, h := range r.wildcard {
		add(h)
	}
	for _, handlers := range r.handlers {
		for _, h := range handlers {
			add(h)
		}
	}
	return result
}

func appendUnique(handlers []shared.EventHandler, h shared.EventHandler) []shared.EventHandler {
	for _, existing := range handlers {
		if existing == h {
			return handlers
		}
	}
	return append(handlers, h)
}

func removeHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}
