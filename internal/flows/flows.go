// Package flows holds the completion callbacks of the four bot dialogs.
//
// Every callback receives each answered step. On the final step it sends a
// standalone notice and asks the host to return to the menu.
package flows

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/internal/events"
	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/storage"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/session"
)

// Deps are the collaborators shared by the flow callbacks.
type Deps struct {
	Sessions  *session.Manager
	Users     storage.UserRepository
	Tickets   storage.TicketRepository
	Polls     storage.PollRepository
	Feedback  storage.FeedbackRepository
	Publisher events.Publisher
	Messenger ports.Messenger
	Locale    *locale.Catalog
	Logger    *slog.Logger
}

func (d *Deps) defaults() {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Locale == nil {
		d.Locale = locale.Default(locale.FallbackLang)
	}
}

// Register binds every flow callback to its entry point and installs the
// logging default for anything else.
func Register(r *registry.Registry, d Deps) {
	d.defaults()
	r.Register(domain.EntryProfile, &Profile{deps: d})
	r.Register(domain.EntryService, &Service{deps: d})
	r.Register(domain.EntryPoll, &Poll{deps: d})
	r.Register(domain.EntryFeedback, &Feedback{deps: d})
	r.SetDefault(Default(d.Logger))
}

// Default logs the answer and lets the engine continue.
func Default(logger *slog.Logger) registry.Handler {
	return registry.HandlerFunc(func(ctx context.Context, ev domain.AnswerEvent) (domain.Signal, error) {
		logger.Info("Unhandled answer",
			"conversation_id", ev.ConversationID,
			"entry", ev.Entry,
			"sequence_id", ev.SequenceID,
			"item_id", ev.ItemID,
			"completed", ev.Completed)
		return domain.Continue, nil
	})
}

// notify sends a standalone notice. Delivery failures are the messenger's
// to log; the flow carries on.
func (d *Deps) notify(ctx context.Context, ev domain.AnswerEvent, template string, args ...string) {
	if d.Messenger == nil {
		return
	}
	chat := ports.ChatRef{ConversationID: ev.ConversationID, ChatID: ev.ChatID}
	prompt := domain.Prompt{Template: template, Args: args, Standalone: true}
	if err := d.Messenger.SendPrompt(ctx, chat, prompt); err != nil {
		d.Logger.Warn("Failed to send notice", "template", template, "err", err)
	}
}

// answerText is what gets stored for an answer: option answers are locale
// keys and are stored translated.
func (d *Deps) answerText(ev domain.AnswerEvent) string {
	if ev.OptionID != nil {
		return d.Locale.Text(ev.Answer)
	}
	return ev.Answer
}

func itemKind(ev domain.AnswerEvent) domain.ItemKind {
	if ev.Dialog == nil {
		return domain.KindTextInput
	}
	if it, ok := ev.Dialog.Items[ev.ItemID]; ok {
		return it.Kind
	}
	return domain.KindTextInput
}

var menu = domain.Signal{Kind: domain.SignalMenu}
