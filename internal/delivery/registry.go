// internal/delivery/registry.go
package delivery

import (
	"log/slog"
	"sync"
)

// Sink delivers a notification message to one front end.
type Sink func(message string) error

// Registry fans notifications out to every registered front end (terminal,
// Telegram). Timer expiry is the only producer today.
type Registry struct {
	mu    sync.RWMutex
	sinks map[string]Sink
}

// NewRegistry creates an empty delivery registry.
func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[string]Sink),
	}
}

// Register adds a named sink, replacing any previous sink with that name.
func (r *Registry) Register(name string, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[name] = sink
}

// Deliver sends the message to every sink. Sink failures are logged, never
// propagated; a notification is best-effort.
func (r *Registry) Deliver(message string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, sink := range r.sinks {
		if err := sink(message); err != nil {
			slog.Error("delivery failed", "sink", name, "error", err)
		}
	}
}
