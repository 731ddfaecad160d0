// Package bot routes Telegram events to the dialog engine and the menus
// around it.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/internal/storage"
	"github.com/aretw0/arbor/internal/telegram"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// MaxTextAnswer is the longest free-text answer accepted, in runes.
const MaxTextAnswer = 1000

// Commands and callback actions handled outside the engine.
const (
	CommandStart  = "start"
	CommandMenu   = "menu"
	ActionAgree   = "agree"
	ActionStart   = domain.ActionItem
	ActionToMenu  = "menu"
	headerNoValue = "—"
)

// Messenger delivers prompts and acknowledges button presses.
type Messenger interface {
	ports.Messenger
	AnswerCallback(callbackID string)
}

// UpdateObserver records how handling an update went.
type UpdateObserver interface {
	ObserveUpdate(updateType string, elapsed time.Duration, err error)
}

// Dispatcher handles one event at a time per conversation.
type Dispatcher struct {
	engine    *runtime.Engine
	sessions  *session.Manager
	users     storage.UserRepository
	tickets   storage.TicketRepository
	messenger Messenger
	locale    *locale.Catalog
	observer  UpdateObserver
	logger    *slog.Logger
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithObserver(o UpdateObserver) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithLocale sets the catalog used for values rendered into headers.
func WithLocale(cat *locale.Catalog) Option {
	return func(d *Dispatcher) {
		d.locale = cat
	}
}

func NewDispatcher(engine *runtime.Engine, sessions *session.Manager, users storage.UserRepository, tickets storage.TicketRepository, messenger Messenger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:    engine,
		sessions:  sessions,
		users:     users,
		tickets:   tickets,
		messenger: messenger,
		locale:    locale.Default(locale.FallbackLang),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// call carries one event through the handlers.
type call struct {
	ev   telegram.Event
	conv runtime.Conversation
	chat ports.ChatRef
}

// Handle processes ev while holding the conversation lock.
func (d *Dispatcher) Handle(ctx context.Context, ev telegram.Event) (err error) {
	if ev.IsCallback() {
		defer d.messenger.AnswerCallback(ev.CallbackID)
	}
	if d.observer != nil {
		start := time.Now()
		defer func() { d.observer.ObserveUpdate(ev.Type(), time.Since(start), err) }()
	}
	return d.sessions.WithLock(ctx, ev.ConversationID(), func(ctx context.Context, scope *session.Scope) error {
		c := call{
			ev:   ev,
			conv: runtime.Conversation{Scope: scope, ChatID: ev.ChatID, UserID: ev.UserID},
			chat: ports.ChatRef{ConversationID: ev.ConversationID(), ChatID: ev.ChatID, MessageID: ev.MessageID},
		}
		if err := d.route(ctx, c); err != nil {
			return fmt.Errorf("update %d: %w", ev.UpdateID, err)
		}
		return nil
	})
}

func (d *Dispatcher) route(ctx context.Context, c call) error {
	ev := c.ev
	switch {
	case ev.Command == CommandStart:
		return d.start(ctx, c)
	case ev.Command == CommandMenu:
		return d.showMenu(ctx, c)
	case ev.Command != "":
		d.logger.Debug("Ignoring unknown command", "command", ev.Command)
		return nil
	case ev.IsCallback():
		return d.callback(ctx, c)
	case ev.PhotoID != "":
		return d.photo(ctx, c)
	case ev.Text != "":
		return d.text(ctx, c)
	}
	return nil
}

func (d *Dispatcher) callback(ctx context.Context, c call) error {
	data := c.ev.Data
	switch action := domain.PayloadAction(data); action {
	case ActionAgree:
		return d.agree(ctx, c)
	case ActionToMenu:
		return d.showMenu(ctx, c)
	case domain.ActionItem:
		out, err := d.engine.HandleItemPayload(ctx, c.conv, data)
		if err != nil {
			return err
		}
		return d.deliver(ctx, c, out)
	case domain.ActionBack:
		out, err := d.engine.GoBack(ctx, c.conv)
		if err != nil {
			return err
		}
		return d.deliver(ctx, c, out)
	default:
		entry, ok := domain.ParseEntryPoint(action)
		if !ok || !entry.HasDialog() {
			d.logger.Debug("Ignoring unknown callback", "data", data)
			return nil
		}
		return d.openFlow(ctx, c, entry)
	}
}

func (d *Dispatcher) text(ctx context.Context, c call) error {
	state, err := d.engine.State(ctx, c.conv)
	if err != nil {
		return err
	}
	if state != domain.AwaitText {
		d.logger.Debug("Ignoring text", "conversation_id", c.chat.ConversationID, "state", state)
		return nil
	}
	if utf8.RuneCountInString(c.ev.Text) > MaxTextAnswer {
		return d.notice(ctx, c, "text_length_validation_error")
	}
	out, err := d.engine.ConsumeTextAnswer(ctx, c.conv, strings.TrimSpace(c.ev.Text))
	if err != nil {
		return err
	}
	return d.deliver(ctx, c, out)
}

func (d *Dispatcher) photo(ctx context.Context, c call) error {
	state, err := d.engine.State(ctx, c.conv)
	if err != nil {
		return err
	}
	if state != domain.AwaitImage {
		d.logger.Debug("Ignoring photo", "conversation_id", c.chat.ConversationID, "state", state)
		return nil
	}
	out, err := d.engine.ConsumeImageAnswer(ctx, c.conv, c.ev.PhotoID)
	if err != nil {
		return err
	}
	return d.deliver(ctx, c, out)
}

// deliver routes an engine outcome to the chat.
func (d *Dispatcher) deliver(ctx context.Context, c call, out domain.Outcome) error {
	switch out.Kind {
	case domain.OutcomeRendered:
		return d.messenger.SendPrompt(ctx, c.chat, *out.Prompt)
	case domain.OutcomeRestart:
		return d.header(ctx, c, out.Entry)
	case domain.OutcomeCompleted:
		return d.showMenu(ctx, c)
	default:
		if out.Signal.Kind != domain.SignalMenu && out.Prompt != nil {
			if err := d.messenger.SendPrompt(ctx, c.chat, *out.Prompt); err != nil {
				return err
			}
		}
		return d.showMenu(ctx, c)
	}
}

func (d *Dispatcher) notice(ctx context.Context, c call, template string, args ...string) error {
	return d.messenger.SendPrompt(ctx, c.chat, domain.Prompt{Template: template, Args: args, Standalone: true})
}
