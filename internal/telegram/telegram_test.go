package telegram

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/session"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	sendErr  func(tgbotapi.Chattable) error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.sendErr != nil {
		if err := f.sendErr(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.nextID++
	return tgbotapi.Message{MessageID: 1000 + f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newMessenger(t *testing.T) (*Messenger, *fakeSender, *session.Scope) {
	t.Helper()
	store := memory.NewStore()
	sender := &fakeSender{}
	return NewMessenger(sender, store, locale.Default("en")), sender, session.NewScope(store, "42")
}

func lastMessage(t *testing.T, s *session.Scope) (int, bool) {
	t.Helper()
	id, ok, err := s.Int(context.Background(), domain.KeyLastMessage)
	require.NoError(t, err)
	return id, ok
}

var chat = ports.ChatRef{ConversationID: "42", ChatID: 42}

func TestMessenger_SendsAndTracksLastMessage(t *testing.T) {
	m, sender, scope := newMessenger(t)
	ctx := context.Background()

	prompt := domain.Prompt{
		Template: domain.TemplateTextPrompt,
		Args:     []string{"profile_first_name"},
		ArgKeys:  true,
		Keyboard: domain.Keyboard{{{Label: domain.LabelBack, Payload: domain.ActionBack}}},
	}
	require.NoError(t, m.SendPrompt(ctx, chat, prompt))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, "✏️ Enter your first name:", msg.Text)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	markup := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, "⬅️ Back", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "back", *markup.InlineKeyboard[0][0].CallbackData)

	id, ok := lastMessage(t, scope)
	require.True(t, ok)
	assert.Equal(t, 1001, id)

	// The next flow prompt replaces the previous one.
	require.NoError(t, m.SendPrompt(ctx, chat, domain.Prompt{Template: "poll_header"}))
	require.Len(t, sender.requests, 1)
	del := sender.requests[0].(tgbotapi.DeleteMessageConfig)
	assert.Equal(t, 1001, del.MessageID)
	id, _ = lastMessage(t, scope)
	assert.Equal(t, 1002, id)
}

func TestMessenger_EditsCallbackMessage(t *testing.T) {
	m, sender, scope := newMessenger(t)
	ref := chat
	ref.MessageID = 77

	require.NoError(t, m.SendPrompt(context.Background(), ref, domain.Prompt{Template: "poll_header"}))

	require.Len(t, sender.sent, 1)
	edit, ok := sender.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 77, edit.MessageID)
	assert.Empty(t, sender.requests)
	id, _ := lastMessage(t, scope)
	assert.Equal(t, 77, id)
}

func TestMessenger_FailedEditFallsBackToSend(t *testing.T) {
	m, sender, scope := newMessenger(t)
	sender.sendErr = func(c tgbotapi.Chattable) error {
		if _, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			return &tgbotapi.Error{Code: 400, Message: "Bad Request: message can't be edited"}
		}
		return nil
	}
	ref := chat
	ref.MessageID = 77

	require.NoError(t, m.SendPrompt(context.Background(), ref, domain.Prompt{Template: "poll_header"}))

	require.Len(t, sender.sent, 2)
	_, isMsg := sender.sent[1].(tgbotapi.MessageConfig)
	assert.True(t, isMsg)
	require.Len(t, sender.requests, 1)
	assert.Equal(t, 77, sender.requests[0].(tgbotapi.DeleteMessageConfig).MessageID)
	id, _ := lastMessage(t, scope)
	assert.Equal(t, 1001, id)
}

func TestMessenger_NotModifiedCountsAsEdited(t *testing.T) {
	m, sender, _ := newMessenger(t)
	sender.sendErr = func(tgbotapi.Chattable) error {
		return &tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified"}
	}
	ref := chat
	ref.MessageID = 5

	require.NoError(t, m.SendPrompt(context.Background(), ref, domain.Prompt{Template: "poll_header"}))
	assert.Len(t, sender.sent, 1)
}

func TestMessenger_StandaloneLeavesLastMessage(t *testing.T) {
	m, sender, scope := newMessenger(t)
	ctx := context.Background()
	require.NoError(t, scope.Set(ctx, domain.KeyLastMessage, 10))

	require.NoError(t, m.SendPrompt(ctx, chat, domain.Prompt{
		Template:   "service_ticket_completed",
		Args:       []string{"ab12cd34"},
		Standalone: true,
	}))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].(tgbotapi.MessageConfig).Text, "ab12cd34")
	assert.Empty(t, sender.requests)
	id, _ := lastMessage(t, scope)
	assert.Equal(t, 10, id)
}

func TestMessenger_SwallowsSendFailures(t *testing.T) {
	m, sender, scope := newMessenger(t)
	ctx := context.Background()
	require.NoError(t, scope.Set(ctx, domain.KeyLastMessage, 10))
	sender.sendErr = func(tgbotapi.Chattable) error {
		return &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}
	}

	assert.NoError(t, m.SendPrompt(ctx, chat, domain.Prompt{Template: "poll_header"}))
	_, ok := lastMessage(t, scope)
	assert.False(t, ok)
	assert.Equal(t, 403, errorCode(&tgbotapi.Error{Code: 403}))
}

func TestKeyboard(t *testing.T) {
	cat := locale.Default("en")
	assert.Nil(t, Keyboard(nil, cat))
	assert.Nil(t, Keyboard(domain.Keyboard{{}}, cat))

	kb := Keyboard(domain.Keyboard{
		{{Label: "poll_option_fast", Payload: "item:6"}},
		{},
		{{Label: "custom label", Payload: "item:7"}},
	}, cat)
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "Fast", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "custom label", kb.InlineKeyboard[1][0].Text)
}

func TestText(t *testing.T) {
	cat := locale.Default("en")
	assert.Equal(t, "profile_first_name", Text(domain.Prompt{Template: "{?}", Args: []string{"profile_first_name"}}, cat))
	assert.Equal(t, "Enter your first name:", Text(domain.Prompt{Template: "{?}", Args: []string{"profile_first_name"}, ArgKeys: true}, cat))
}

func TestFromUpdate(t *testing.T) {
	user := &tgbotapi.User{ID: 7, UserName: "kit", FirstName: "Kit", LanguageCode: "ru"}

	t.Run("command", func(t *testing.T) {
		ev, ok := FromUpdate(tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
			From:     user,
			Chat:     &tgbotapi.Chat{ID: 42},
			Text:     "/start 2",
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
		}})
		require.True(t, ok)
		assert.Equal(t, "start", ev.Command)
		assert.Equal(t, "2", ev.Args)
		assert.Empty(t, ev.Text)
		assert.Equal(t, "42", ev.ConversationID())
		assert.Equal(t, int64(7), ev.UserID)
		assert.Equal(t, "ru", ev.LanguageCode)
	})

	t.Run("photo picks the largest size", func(t *testing.T) {
		ev, ok := FromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
			From: user,
			Chat: &tgbotapi.Chat{ID: 42},
			Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90, Height: 90},
				{FileID: "large", Width: 1280, Height: 960},
				{FileID: "medium", Width: 320, Height: 240},
			},
		}})
		require.True(t, ok)
		assert.Equal(t, "large", ev.PhotoID)
	})

	t.Run("callback", func(t *testing.T) {
		ev, ok := FromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    user,
			Data:    "item:3",
			Message: &tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: 42}},
		}})
		require.True(t, ok)
		assert.True(t, ev.IsCallback())
		assert.Equal(t, "item:3", ev.Data)
		assert.Equal(t, 99, ev.MessageID)
		assert.Equal(t, int64(42), ev.ChatID)
		assert.Equal(t, int64(7), ev.UserID)
		assert.Equal(t, "kit", ev.Username)
	})

	t.Run("ignored", func(t *testing.T) {
		_, ok := FromUpdate(tgbotapi.Update{EditedMessage: &tgbotapi.Message{}})
		assert.False(t, ok)
	})
}

func TestResolveUserID(t *testing.T) {
	id, ok := ResolveUserID(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 5}}})
	assert.True(t, ok)
	assert.Equal(t, int64(5), id)

	id, ok = ResolveUserID(tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 6}}})
	assert.True(t, ok)
	assert.Equal(t, int64(6), id)

	_, ok = ResolveUserID(tgbotapi.Update{})
	assert.False(t, ok)
}

func TestDecodeWebhook(t *testing.T) {
	body := `{"update_id":10,"message":{"message_id":1,"from":{"id":7,"is_bot":false,"first_name":"Kit"},"chat":{"id":42,"type":"private"},"date":0,"text":"hello"}}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))

	ev, ok, err := DecodeWebhook(req)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", ev.Text)
	assert.Equal(t, int64(42), ev.ChatID)

	_, _, err = DecodeWebhook(httptest.NewRequest("POST", "/webhook", strings.NewReader("{")))
	assert.Error(t, err)
}

func TestEvent_Type(t *testing.T) {
	assert.Equal(t, "command", Event{Command: "start"}.Type())
	assert.Equal(t, "callback", Event{CallbackID: "1", Data: "item"}.Type())
	assert.Equal(t, "photo", Event{PhotoID: "p"}.Type())
	assert.Equal(t, "text", Event{Text: "hi"}.Type())
	assert.Equal(t, "other", Event{}.Type())
}
