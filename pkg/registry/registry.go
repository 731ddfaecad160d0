// Package registry maps entry points to the flow handlers that persist answers.
package registry

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Handler receives every answered step of a flow.
// The returned signal is advisory; side effects belong to the handler.
type Handler interface {
	Handle(ctx context.Context, event domain.AnswerEvent) (domain.Signal, error)
}

// Rewinder is implemented by handlers that keep answers across steps and
// must drop them when the user goes back or cancels.
type Rewinder interface {
	Rewind(ctx context.Context, event domain.RewindEvent) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event domain.AnswerEvent) (domain.Signal, error)

func (f HandlerFunc) Handle(ctx context.Context, event domain.AnswerEvent) (domain.Signal, error) {
	return f(ctx, event)
}

// Registry manages the handlers of each entry point.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.EntryPoint]Handler
	fallback Handler
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.EntryPoint]Handler),
	}
}

// Register adds a handler for an entry point.
// An existing handler for the same entry point is overwritten.
func (r *Registry) Register(entry domain.EntryPoint, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[entry] = h
}

// SetDefault installs the handler used for unmapped entry points.
func (r *Registry) SetDefault(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Dispatch invokes the handler of the entry point, else the default one.
// With neither it is a no-op returning domain.Continue.
func (r *Registry) Dispatch(ctx context.Context, entry domain.EntryPoint, event domain.AnswerEvent) (domain.Signal, error) {
	h := r.handler(entry)
	if h == nil {
		return domain.Continue, nil
	}
	return h.Handle(ctx, event)
}

// Rewind forwards a rewind to the handler of the entry point when it
// implements Rewinder. Other handlers keep nothing to undo.
func (r *Registry) Rewind(ctx context.Context, entry domain.EntryPoint, event domain.RewindEvent) error {
	rw, ok := r.handler(entry).(Rewinder)
	if !ok {
		return nil
	}
	return rw.Rewind(ctx, event)
}

func (r *Registry) handler(entry domain.EntryPoint) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[entry]; ok {
		return h
	}
	return r.fallback
}
