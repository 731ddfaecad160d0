package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	conv := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, conv, domain.KeyActiveDialog, "poll"))

		v, ok, err := store.Get(ctx, conv, domain.KeyActiveDialog)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "poll", v)
	})

	t.Run("Get Missing Key", func(t *testing.T) {
		v, ok, err := store.Get(ctx, conv, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Structured Values", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, conv, domain.KeyTrace, []string{"poll", "item", "0:0"}))
		require.NoError(t, store.Set(ctx, conv, domain.KeyPosition, domain.Position{SequenceID: 2, ItemIndex: 1}))

		trace, ok, err := store.Get(ctx, conv, domain.KeyTrace)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotNil(t, trace)

		pos, ok, err := store.Get(ctx, conv, domain.KeyPosition)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotNil(t, pos)
	})

	t.Run("Set Nil Deletes", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, conv, domain.KeyPendingAnswer, "hello"))
		require.NoError(t, store.Set(ctx, conv, domain.KeyPendingAnswer, nil))

		_, ok, err := store.Get(ctx, conv, domain.KeyPendingAnswer)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, conv, "scratch", 1))
		require.NoError(t, store.Delete(ctx, conv, "scratch"))

		_, ok, err := store.Get(ctx, conv, "scratch")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Conversations Are Isolated", func(t *testing.T) {
		other := conv + "-other"
		require.NoError(t, store.Set(ctx, other, domain.KeyActiveDialog, "service"))
		defer func() { _ = store.Clear(ctx, other) }()

		v, ok, err := store.Get(ctx, conv, domain.KeyActiveDialog)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "poll", v)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, conv))

		_, ok, err := store.Get(ctx, conv, domain.KeyActiveDialog)
		require.NoError(t, err)
		assert.False(t, ok, "Get after Clear should report a missing key")
	})
}
