package session_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_TypedAccessors(t *testing.T) {
	ctx := context.Background()
	s := session.NewScope(memory.NewStore(), "chat")

	_, ok, err := s.ActiveDialog(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetActiveDialog(ctx, domain.EntryPoll))
	entry, ok, err := s.ActiveDialog(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.EntryPoll, entry)

	require.NoError(t, s.SetPosition(ctx, domain.Position{SequenceID: 3, ItemIndex: 1}))
	pos, ok, err := s.Position(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Position{SequenceID: 3, ItemIndex: 1}, pos)

	trace, err := s.Trace(ctx)
	require.NoError(t, err)
	assert.Empty(t, trace)

	require.NoError(t, s.SetTrace(ctx, []string{"poll", "item", "0:0"}))
	trace, err = s.Trace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"poll", "item", "0:0"}, trace)
}

// Redis hands values back as decoded JSON; the scope must accept that shape.
func TestScope_DecodesGenericValues(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := session.NewScope(store, "chat")

	require.NoError(t, store.Set(ctx, "chat", domain.KeyPosition, map[string]any{
		"sequence_id": float64(5),
		"item_index":  float64(2),
	}))
	require.NoError(t, store.Set(ctx, "chat", domain.KeyTrace, []any{"service", "item", "5:1"}))
	require.NoError(t, store.Set(ctx, "chat", domain.KeyLastMessage, "42"))

	pos, ok, err := s.Position(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Position{SequenceID: 5, ItemIndex: 2}, pos)

	trace, err := s.Trace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"service", "item", "5:1"}, trace)

	id, ok, err := s.Int(ctx, domain.KeyLastMessage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, id)
}

func TestScope_ActiveDialogRejectsNonDialogTokens(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := session.NewScope(store, "chat")

	for _, token := range []string{"menu", "garbage"} {
		require.NoError(t, store.Set(ctx, "chat", domain.KeyActiveDialog, token))
		_, ok, err := s.ActiveDialog(ctx)
		require.NoError(t, err)
		assert.False(t, ok, token)
	}
}

func TestScope_TakePendingAnswer(t *testing.T) {
	ctx := context.Background()
	s := session.NewScope(memory.NewStore(), "chat")

	_, ok, err := s.TakePendingAnswer(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetPendingAnswer(ctx, "hello"))
	answer, ok, err := s.TakePendingAnswer(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", answer)

	_, ok, err = s.TakePendingAnswer(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "buffer is single-use")
}
