package router_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/router"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *router.TraceRouter {
	return router.New(session.NewScope(memory.NewStore(), "chat"))
}

func TestTraceRouter_EmptyState(t *testing.T) {
	ctx := context.Background()
	r := newRouter()

	_, ok, err := r.EntryPoint(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.Parent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.PopPreviousTraceItem(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.ResetToEntryPoint(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTraceRouter_SetParent(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		want  []string
	}{
		{"empty trace gets placeholder", nil, []string{"", "item"}},
		{"entry only", []string{"poll"}, []string{"poll", "item"}},
		{"overwrites index 1", []string{"poll", "menu", "0:0"}, []string{"poll", "item", "0:0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			scope := session.NewScope(memory.NewStore(), "chat")
			if tt.setup != nil {
				require.NoError(t, scope.SetTrace(ctx, tt.setup))
			}
			r := router.New(scope)

			require.NoError(t, r.SetParent(ctx, "item"))
			got, err := r.CurrentTrace(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTraceRouter_PlaceholderIsNotAnEntryPoint(t *testing.T) {
	ctx := context.Background()
	r := newRouter()
	require.NoError(t, r.SetParent(ctx, "item"))

	_, ok, err := r.EntryPoint(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	parent, ok, err := r.Parent(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "item", parent)
}

func TestTraceRouter_PushPop(t *testing.T) {
	ctx := context.Background()
	r := newRouter()

	require.NoError(t, r.SetEntryPoint(ctx, "service"))
	require.NoError(t, r.SetParent(ctx, "item"))
	require.NoError(t, r.PushTraceItem(ctx, "0:0"))
	require.NoError(t, r.PushTraceItem(ctx, "1:0"))

	trace, err := r.CurrentTrace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"service", "item", "0:0", "1:0"}, trace)

	for _, want := range []string{"1:0", "0:0", "item", "service"} {
		got, ok, err := r.PopPreviousTraceItem(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok, err := r.PopPreviousTraceItem(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTraceRouter_SetEntryPointResets(t *testing.T) {
	ctx := context.Background()
	r := newRouter()

	require.NoError(t, r.SetEntryPoint(ctx, "poll"))
	require.NoError(t, r.PushTraceItem(ctx, "0:0"))
	require.NoError(t, r.SetEntryPoint(ctx, "feedback"))

	trace, err := r.CurrentTrace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"feedback"}, trace)
}

func TestTraceRouter_ResetToEntryPoint(t *testing.T) {
	ctx := context.Background()
	r := newRouter()

	require.NoError(t, r.SetEntryPoint(ctx, "profile"))
	require.NoError(t, r.SetParent(ctx, "item"))
	require.NoError(t, r.PushTraceItem(ctx, "0:2"))

	entry, ok, err := r.ResetToEntryPoint(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "profile", entry)

	trace, err := r.CurrentTrace(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"profile"}, trace)
}
