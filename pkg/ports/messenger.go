package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// ChatRef addresses the chat a prompt is delivered to.
type ChatRef struct {
	ConversationID string
	ChatID         int64
	// MessageID is the bot message that carried the triggering callback, if any.
	// Messengers may edit it in place instead of sending a new message.
	MessageID int
}

// Messenger delivers prompts to the chat transport.
// Implementations own retries and failure logging; the engine never retries a send.
type Messenger interface {
	SendPrompt(ctx context.Context, chat ChatRef, prompt domain.Prompt) error
}
