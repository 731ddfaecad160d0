package memory

import (
	"context"
	"sync"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]map[string]any
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]any),
	}
}

// Get returns a copy of the stored value so callers cannot mutate the store by reference.
func (s *Store) Get(ctx context.Context, conversationID, key string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[conversationID][key]
	if !ok {
		return nil, false, nil
	}
	return copyValue(v), true, nil
}

// Set stores the value; a nil value deletes the key.
func (s *Store) Set(ctx context.Context, conversationID, key string, value any) error {
	if value == nil {
		return s.Delete(ctx, conversationID, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.data[conversationID]
	if !ok {
		bucket = make(map[string]any)
		s.data[conversationID] = bucket
	}
	bucket[key] = copyValue(value)
	return nil
}

// Delete removes a single key.
func (s *Store) Delete(ctx context.Context, conversationID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.data[conversationID]
	if !ok {
		return nil
	}
	delete(bucket, key)
	if len(bucket) == 0 {
		delete(s.data, conversationID)
	}
	return nil
}

// Clear removes the conversation.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, conversationID)
	return nil
}

// List returns the conversations holding state.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// copyValue isolates slices, the only mutable values the engine stores.
func copyValue(v any) any {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		return append([]any(nil), t...)
	default:
		return v
	}
}
