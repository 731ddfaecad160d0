package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

// Sender is the part of *tgbotapi.BotAPI used to talk to Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var _ ports.Messenger = (*Messenger)(nil)

// Messenger renders prompts into Telegram messages.
//
// Flow prompts replace the previous bot message: the message carrying the
// callback is edited in place, otherwise the last bot message is deleted and
// a new one sent. Standalone prompts are always new messages.
type Messenger struct {
	sender Sender
	store  ports.SessionStore
	locale *locale.Catalog
	logger *slog.Logger
}

type MessengerOption func(*Messenger)

func WithMessengerLogger(logger *slog.Logger) MessengerOption {
	return func(m *Messenger) {
		m.logger = logger
	}
}

func NewMessenger(sender Sender, store ports.SessionStore, cat *locale.Catalog, opts ...MessengerOption) *Messenger {
	m := &Messenger{
		sender: sender,
		store:  store,
		locale: cat,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendPrompt delivers the prompt. Telegram failures are logged and
// swallowed; only session errors are returned.
func (m *Messenger) SendPrompt(ctx context.Context, chat ports.ChatRef, p domain.Prompt) error {
	text := Text(p, m.locale)
	markup := Keyboard(p.Keyboard, m.locale)

	if p.Standalone {
		m.send(chat, text, markup)
		return nil
	}

	scope := session.NewScope(m.store, chat.ConversationID)
	if chat.MessageID != 0 && m.edit(chat, text, markup) {
		return scope.Set(ctx, domain.KeyLastMessage, chat.MessageID)
	}

	last, ok, err := scope.Int(ctx, domain.KeyLastMessage)
	if err != nil {
		return err
	}
	if ok && last != chat.MessageID {
		m.delete(chat.ChatID, last)
	}
	m.delete(chat.ChatID, chat.MessageID)

	sent, ok := m.send(chat, text, markup)
	if !ok {
		return scope.Delete(ctx, domain.KeyLastMessage)
	}
	return scope.Set(ctx, domain.KeyLastMessage, sent.MessageID)
}

// AnswerCallback stops the client-side spinner of a pressed button.
func (m *Messenger) AnswerCallback(callbackID string) {
	if callbackID == "" {
		return
	}
	if _, err := m.sender.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		m.logFailure("answer callback", 0, err)
	}
}

func (m *Messenger) send(chat ports.ChatRef, text string, markup *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, bool) {
	msg := tgbotapi.NewMessage(chat.ChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := m.sender.Send(msg)
	if err != nil {
		m.logFailure("send message", chat.ChatID, err)
		return tgbotapi.Message{}, false
	}
	return sent, true
}

func (m *Messenger) edit(chat ports.ChatRef, text string, markup *tgbotapi.InlineKeyboardMarkup) bool {
	cfg := tgbotapi.NewEditMessageText(chat.ChatID, chat.MessageID, text)
	cfg.ParseMode = tgbotapi.ModeHTML
	cfg.ReplyMarkup = markup
	if _, err := m.sender.Send(cfg); err != nil {
		if notModified(err) {
			return true
		}
		m.logger.Debug("Edit failed, sending a new message", "chat_id", chat.ChatID, "code", errorCode(err), "err", err)
		return false
	}
	return true
}

func (m *Messenger) delete(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := m.sender.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		m.logger.Debug("Delete failed", "chat_id", chatID, "message_id", messageID, "code", errorCode(err))
	}
}

func (m *Messenger) logFailure(op string, chatID int64, err error) {
	m.logger.Error("Telegram request failed", "op", op, "chat_id", chatID, "code", errorCode(err), "err", err)
}

// notModified reports the error Telegram returns when an edit would not
// change the message.
func notModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}

// errorCode extracts the Bot API error code, 0 for transport errors.
func errorCode(err error) int {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
