package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// htmlToMarkdown maps the Telegram HTML subset used by the catalog.
var htmlToMarkdown = strings.NewReplacer(
	"<b>", "**", "</b>", "**",
	"<i>", "_", "</i>", "_",
	"<code>", "`", "</code>", "`",
	"\n", "  \n",
)

// NewRenderer returns a function that renders bot messages for the terminal.
// It falls back to plain text when glamour cannot be initialised.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return Plain
	}
	return func(text string) (string, error) {
		return r.Render(htmlToMarkdown.Replace(text))
	}
}

// Plain strips the markup instead of rendering it.
func Plain(text string) (string, error) {
	return strings.NewReplacer("<b>", "", "</b>", "", "<i>", "", "</i>", "", "<code>", "", "</code>", "").Replace(text) + "\n", nil
}
