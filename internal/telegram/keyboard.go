package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/arbor/internal/locale"
	"github.com/aretw0/arbor/pkg/domain"
)

// Keyboard builds an inline keyboard with localised labels.
// Empty rows are skipped; a keyboard without buttons yields nil.
func Keyboard(kb domain.Keyboard, cat *locale.Catalog) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(cat.Text(b.Label), b.Payload))
		}
		rows = append(rows, buttons)
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// Text renders the message body of a prompt.
func Text(p domain.Prompt, cat *locale.Catalog) string {
	return cat.Prompt(p)
}
