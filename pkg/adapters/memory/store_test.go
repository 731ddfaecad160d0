package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_CopyOnReadAndWrite(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	trace := []string{"poll", "item"}
	require.NoError(t, store.Set(ctx, "c1", domain.KeyTrace, trace))
	trace[0] = "mutated"

	v, ok, err := store.Get(ctx, "c1", domain.KeyTrace)
	require.NoError(t, err)
	require.True(t, ok)
	got := v.([]string)
	assert.Equal(t, []string{"poll", "item"}, got)

	got[1] = "mutated"
	v, _, _ = store.Get(ctx, "c1", domain.KeyTrace)
	assert.Equal(t, []string{"poll", "item"}, v.([]string))
}

func TestMemoryStore_List(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "a", "k", 1))
	require.NoError(t, store.Set(ctx, "b", "k", 1))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, store.Delete(ctx, "a", "k"))
	ids, _ = store.List(ctx)
	assert.Equal(t, []string{"b"}, ids)
}
