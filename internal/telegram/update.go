package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Event is the transport-neutral view of one Telegram update.
type Event struct {
	UpdateID     int
	ChatID       int64
	UserID       int64
	Username     string
	FirstName    string
	LanguageCode string

	// MessageID is the bot message that carried a callback query.
	MessageID  int
	CallbackID string
	Data       string

	Text    string
	Command string
	Args    string
	// PhotoID is the file id of the largest photo size.
	PhotoID string
}

// ConversationID is the session key of the chat.
func (e Event) ConversationID() string {
	return strconv.FormatInt(e.ChatID, 10)
}

// Type classifies the event for logs and metrics.
func (e Event) Type() string {
	switch {
	case e.Command != "":
		return "command"
	case e.IsCallback():
		return "callback"
	case e.PhotoID != "":
		return "photo"
	case e.Text != "":
		return "text"
	}
	return "other"
}

// IsCallback reports whether the event came from an inline button.
func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

// FromUpdate converts an update. Updates the bot does not react to
// (edits, channel posts, member changes) are reported as false.
func FromUpdate(u tgbotapi.Update) (Event, bool) {
	ev := Event{UpdateID: u.UpdateID}
	ev.UserID, _ = ResolveUserID(u)
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		ev.CallbackID = q.ID
		ev.Data = q.Data
		fillProfile(&ev, q.From)
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				ev.ChatID = q.Message.Chat.ID
			}
		}
		if ev.ChatID == 0 {
			ev.ChatID = ev.UserID
		}
	case u.Message != nil:
		m := u.Message
		fillProfile(&ev, m.From)
		if m.Chat != nil {
			ev.ChatID = m.Chat.ID
		}
		if m.IsCommand() {
			ev.Command = m.Command()
			ev.Args = m.CommandArguments()
		} else {
			ev.Text = m.Text
		}
		ev.PhotoID = largestPhoto(m.Photo)
	default:
		return Event{}, false
	}
	return ev, ev.ChatID != 0
}

// ResolveUserID returns the sender of a message or callback query.
func ResolveUserID(u tgbotapi.Update) (int64, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		return u.CallbackQuery.From.ID, true
	case u.Message != nil && u.Message.From != nil:
		return u.Message.From.ID, true
	}
	return 0, false
}

func fillProfile(ev *Event, from *tgbotapi.User) {
	if from == nil {
		return
	}
	ev.Username = from.UserName
	ev.FirstName = from.FirstName
	ev.LanguageCode = from.LanguageCode
}

func largestPhoto(sizes []tgbotapi.PhotoSize) string {
	best := -1
	for i, p := range sizes {
		if best < 0 || p.Width*p.Height > sizes[best].Width*sizes[best].Height {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return sizes[best].FileID
}
