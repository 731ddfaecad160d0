package ports

import "context"

// SessionStore persists the per-conversation key/value state the engine works on.
// A conversation owns its keys exclusively; stores must never share them across chats.
//
// Values read back from serialising stores may come in their generic form
// (map[string]any, []any, float64); session.Scope decodes them into typed values.
type SessionStore interface {
	// Get returns the value stored under key. The bool is false when the key is absent.
	Get(ctx context.Context, conversationID, key string) (any, bool, error)

	// Set stores value under key. A nil value deletes the key.
	Set(ctx context.Context, conversationID, key string, value any) error

	// Delete removes a single key.
	Delete(ctx context.Context, conversationID, key string) error

	// Clear removes every key of the conversation.
	Clear(ctx context.Context, conversationID string) error
}

// SessionLister is implemented by stores that can enumerate conversations.
type SessionLister interface {
	List(ctx context.Context) ([]string, error)
}
