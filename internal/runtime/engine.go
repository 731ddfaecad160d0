package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/router"
	"github.com/aretw0/arbor/pkg/session"
)

// HandlerDispatcher routes answered steps to the flow handlers.
type HandlerDispatcher interface {
	Dispatch(ctx context.Context, entry domain.EntryPoint, event domain.AnswerEvent) (domain.Signal, error)
}

// RewindDispatcher is implemented by dispatchers whose handlers must hear
// about answers voided by back navigation or a restart.
type RewindDispatcher interface {
	Rewind(ctx context.Context, entry domain.EntryPoint, event domain.RewindEvent) error
}

// Conversation is everything the engine needs to know about the caller.
// The engine assumes exclusive access to Scope for the duration of a call.
type Conversation struct {
	Scope  *session.Scope
	ChatID int64
	UserID int64
}

// Engine interprets dialogs against per-conversation session state.
// It holds no conversation state of its own and is safe for concurrent use.
type Engine struct {
	catalog  ports.DialogCatalog
	handlers HandlerDispatcher
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	now      func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine creates an engine. A nil dispatcher makes every answer a no-op.
func NewEngine(catalog ports.DialogCatalog, handlers HandlerDispatcher, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		handlers: handlers,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the dialogs the engine serves.
func (e *Engine) Catalog() ports.DialogCatalog {
	return e.catalog
}

// StartFlow makes entry the active dialog at its first step and resets the trace.
// Nothing is rendered; hosts usually show the flow's entry screen first.
func (e *Engine) StartFlow(ctx context.Context, conv Conversation, entry domain.EntryPoint) error {
	if _, ok := e.catalog.Dialog(entry); !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDialog, entry)
	}

	s := conv.Scope
	if err := resetTrace(ctx, s, entry); err != nil {
		return err
	}
	if err := s.SetActiveDialog(ctx, entry); err != nil {
		return err
	}
	if err := s.SetPosition(ctx, domain.Position{SequenceID: domain.EntrySequenceID}); err != nil {
		return err
	}
	if err := s.Delete(ctx, domain.KeyPendingAnswer); err != nil {
		return err
	}

	e.logger.Debug("Flow started", "conversation_id", s.ConversationID(), "entry", entry)
	return nil
}

// Leave abandons the active flow, if any, and parks the conversation at the
// top-level menu.
func (e *Engine) Leave(ctx context.Context, conv Conversation) error {
	if err := e.clearFlow(ctx, conv.Scope); err != nil {
		return err
	}
	return router.New(conv.Scope).SetEntryPoint(ctx, domain.EntryMenu.Token())
}

// State derives what the conversation is waiting for from the item under
// the active position.
func (e *Engine) State(ctx context.Context, conv Conversation) (domain.AwaitState, error) {
	active, ok, err := e.load(ctx, conv.Scope)
	if err != nil || !ok {
		return domain.AwaitTerminal, err
	}
	it, ok := active.dialog.ItemAt(active.pos)
	if !ok {
		return domain.AwaitTerminal, nil
	}
	return domain.AwaitStateFor(it.Kind), nil
}

// activeFlow is the dialog context resolved from session state.
type activeFlow struct {
	entry  domain.EntryPoint
	dialog *domain.Dialog
	pos    domain.Position
}

// load resolves the active dialog. ok=false is the MissingDialogContext case.
func (e *Engine) load(ctx context.Context, s *session.Scope) (activeFlow, bool, error) {
	entry, ok, err := s.ActiveDialog(ctx)
	if err != nil || !ok {
		return activeFlow{}, false, err
	}
	d, ok := e.catalog.Dialog(entry)
	if !ok {
		e.logger.Warn("Active dialog is not loaded", "conversation_id", s.ConversationID(), "entry", entry)
		return activeFlow{}, false, nil
	}
	pos, ok, err := s.Position(ctx)
	if err != nil || !ok {
		if err == nil {
			e.logger.Warn("Active dialog has no position", "conversation_id", s.ConversationID(), "entry", entry)
		}
		return activeFlow{}, false, err
	}
	return activeFlow{entry: entry, dialog: d, pos: pos}, true, nil
}

// end builds the terminal outcome shown when no flow is active.
func end() domain.Outcome {
	return domain.Outcome{
		Kind:   domain.OutcomeEnd,
		Signal: domain.Continue,
		Prompt: &domain.Prompt{Template: domain.TemplateNoActiveFlow, Standalone: true},
	}
}

// resetTrace leaves the trace as [entry, parent].
func resetTrace(ctx context.Context, s *session.Scope, entry domain.EntryPoint) error {
	nav := router.New(s)
	if err := nav.SetEntryPoint(ctx, entry.Token()); err != nil {
		return err
	}
	return nav.SetParent(ctx, domain.ParentMarker)
}

// clearFlow forgets the running dialog while keeping the entry point in the trace.
func (e *Engine) clearFlow(ctx context.Context, s *session.Scope) error {
	if _, _, err := router.New(s).ResetToEntryPoint(ctx); err != nil {
		return err
	}
	for _, key := range []string{domain.KeyActiveDialog, domain.KeyPosition, domain.KeyPendingAnswer} {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, hook func(context.Context, *domain.StepEvent), typ domain.EventType, s *session.Scope, entry domain.EntryPoint, pos domain.Position, kind domain.ItemKind) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.StepEvent{
		Timestamp:      e.now(),
		Type:           typ,
		ConversationID: s.ConversationID(),
		Entry:          entry,
		Position:       pos,
		Kind:           kind,
	})
}
