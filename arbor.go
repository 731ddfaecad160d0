package arbor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

// Re-exported domain types so library users need a single import.
type (
	Dialog      = domain.Dialog
	EntryPoint  = domain.EntryPoint
	Outcome     = domain.Outcome
	Prompt      = domain.Prompt
	AnswerEvent = domain.AnswerEvent
	RewindEvent = domain.RewindEvent
	Signal      = domain.Signal
	Handler     = registry.Handler
	HandlerFunc = registry.HandlerFunc
	Rewinder    = registry.Rewinder
)

// Engine is the high-level entry point for the Arbor library.
// It wraps the runtime with a handler registry and a session manager.
type Engine struct {
	runtime  *runtime.Engine
	catalog  ports.DialogCatalog
	registry *registry.Registry
	sessions *session.Manager
	store    ports.SessionStore
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	handlers map[domain.EntryPoint]registry.Handler
	Name     string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithCatalog injects dialogs directly, bypassing the directory loader.
func WithCatalog(c ports.DialogCatalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHandler binds the answer handler of one entry point.
func WithHandler(entry domain.EntryPoint, h registry.Handler) Option {
	return func(e *Engine) {
		if e.handlers == nil {
			e.handlers = make(map[domain.EntryPoint]registry.Handler)
		}
		e.handlers[entry] = h
	}
}

// New loads the dialogs of dir and builds an Engine.
// If WithCatalog is given, dir is only used as a label and may be empty.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.catalog == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no catalog is provided")
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		catalog, err := file.LoadDir(abs)
		if err != nil {
			return nil, err
		}
		eng.catalog = catalog
		eng.Name = filepath.Base(abs)
	} else if dir != "" {
		eng.Name = filepath.Base(dir)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("dialogs", eng.Name)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	eng.registry = registry.NewRegistry()
	for entry, h := range eng.handlers {
		eng.registry.Register(entry, h)
	}
	eng.sessions = session.NewManager(eng.store, session.WithLogger(eng.logger))
	eng.runtime = runtime.NewEngine(eng.catalog, eng.registry,
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	)
	return eng, nil
}

// Conversation returns the engine handle of one conversation.
func (e *Engine) Conversation(conversationID string, chatID, userID int64) runtime.Conversation {
	return runtime.Conversation{Scope: e.sessions.Scope(conversationID), ChatID: chatID, UserID: userID}
}

// Start begins the dialog of entry and renders its first step.
func (e *Engine) Start(ctx context.Context, conv runtime.Conversation, entry domain.EntryPoint) (domain.Outcome, error) {
	if err := e.runtime.StartFlow(ctx, conv, entry); err != nil {
		return domain.Outcome{}, err
	}
	return e.runtime.RenderCurrentStep(ctx, conv)
}

// Runtime exposes the underlying dialog engine.
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}

// Sessions returns the session manager, for per-conversation locking.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Registry returns the handler registry, to register handlers after New.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Catalog returns the loaded dialogs.
func (e *Engine) Catalog() ports.DialogCatalog {
	return e.catalog
}
