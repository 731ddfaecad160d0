package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		cid := fmt.Sprintf("chat-%d", i)
		_ = mgr.WithLock(ctx, cid, func(ctx context.Context, s *Scope) error {
			return s.Set(ctx, "touched", true)
		})
		_ = mgr.Reset(ctx, cid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("memory leak detected: %d locks remaining after Reset", lockCount)
	}
}
