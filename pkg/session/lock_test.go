package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/aretw0/simflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, state *domain.FormState) error {
	return nil
}
func (nopStore) Load(ctx context.Context, sessionID string) (*domain.FormState, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, domain.NewFormState())
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}

type recordingLocker struct {
	mu       sync.Mutex
	ttls     []time.Duration
	released int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	mgr := NewManager(nopStore{}, WithLocker(locker), WithLockTTL(5*time.Second))

	err := mgr.WithLock(context.Background(), "s", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{5 * time.Second}, locker.ttls)
	assert.Equal(t, 1, locker.released)

	t.Run("default ttl", func(t *testing.T) {
		locker := &recordingLocker{}
		mgr := NewManager(nopStore{}, WithLocker(locker))
		_ = mgr.WithLock(context.Background(), "s", func(context.Context) error { return nil })
		assert.Equal(t, []time.Duration{DefaultLockTTL}, locker.ttls)
	})
}
