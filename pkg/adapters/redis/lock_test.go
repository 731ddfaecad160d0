package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_MutualExclusion(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "chat-1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:chat-1"))

	// A second holder must wait until the context gives up.
	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "chat-1", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:chat-1"))

	unlock2, err := locker.Lock(ctx, "chat-1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

func TestLocker_UnlockKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "chat-2", 5*time.Second)
	require.NoError(t, err)

	// Simulate expiry and takeover by another replica.
	require.NoError(t, mr.Set("test:lock:chat-2", "someone-else"))
	require.NoError(t, unlock(ctx))

	got, err := mr.Get("test:lock:chat-2")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
