package session

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Scope is the state of one conversation.
// Values read back from serialising stores arrive in generic form
// (map[string]any, []any, float64) and are decoded here.
type Scope struct {
	store ports.SessionStore
	id    string
}

// NewScope binds a store to one conversation.
func NewScope(store ports.SessionStore, conversationID string) *Scope {
	return &Scope{store: store, id: conversationID}
}

// ConversationID returns the bound conversation.
func (s *Scope) ConversationID() string {
	return s.id
}

// Get reads a key into out. It reports false when the key is absent.
func (s *Scope) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, s.id, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !ok || raw == nil {
		return false, nil
	}
	if err := decode(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// Set writes a key; nil deletes it.
func (s *Scope) Set(ctx context.Context, key string, value any) error {
	if err := s.store.Set(ctx, s.id, key, value); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *Scope) Delete(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, s.id, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Clear drops the whole conversation.
func (s *Scope) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.id)
}

func decode(raw, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// ActiveDialog returns the entry point of the running dialog.
func (s *Scope) ActiveDialog(ctx context.Context) (domain.EntryPoint, bool, error) {
	var token string
	ok, err := s.Get(ctx, domain.KeyActiveDialog, &token)
	if err != nil || !ok {
		return domain.EntryUnknown, false, err
	}
	entry, ok := domain.ParseEntryPoint(token)
	if !ok || !entry.HasDialog() {
		return domain.EntryUnknown, false, nil
	}
	return entry, true, nil
}

// SetActiveDialog records the running dialog by its entry point token.
func (s *Scope) SetActiveDialog(ctx context.Context, entry domain.EntryPoint) error {
	return s.Set(ctx, domain.KeyActiveDialog, entry.Token())
}

// Position returns the active position.
func (s *Scope) Position(ctx context.Context) (domain.Position, bool, error) {
	var p domain.Position
	ok, err := s.Get(ctx, domain.KeyPosition, &p)
	return p, ok, err
}

// SetPosition stores the active position.
func (s *Scope) SetPosition(ctx context.Context, p domain.Position) error {
	return s.Set(ctx, domain.KeyPosition, p)
}

// Trace returns the navigation trace; a missing trace is empty.
func (s *Scope) Trace(ctx context.Context) ([]string, error) {
	var trace []string
	if _, err := s.Get(ctx, domain.KeyTrace, &trace); err != nil {
		return nil, err
	}
	return trace, nil
}

// SetTrace stores the navigation trace.
func (s *Scope) SetTrace(ctx context.Context, trace []string) error {
	if trace == nil {
		trace = []string{}
	}
	return s.Set(ctx, domain.KeyTrace, trace)
}

// SetPendingAnswer fills the one-slot answer buffer.
func (s *Scope) SetPendingAnswer(ctx context.Context, answer string) error {
	return s.Set(ctx, domain.KeyPendingAnswer, answer)
}

// TakePendingAnswer empties the answer buffer and returns what it held.
// An empty string counts as no answer.
func (s *Scope) TakePendingAnswer(ctx context.Context) (string, bool, error) {
	var answer string
	ok, err := s.Get(ctx, domain.KeyPendingAnswer, &answer)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	if err := s.Delete(ctx, domain.KeyPendingAnswer); err != nil {
		return "", false, err
	}
	return answer, answer != "", nil
}

// String reads a string key.
func (s *Scope) String(ctx context.Context, key string) (string, bool, error) {
	var v string
	ok, err := s.Get(ctx, key, &v)
	return v, ok, err
}

// Int reads an integer key.
func (s *Scope) Int(ctx context.Context, key string) (int, bool, error) {
	var v int
	ok, err := s.Get(ctx, key, &v)
	return v, ok, err
}
