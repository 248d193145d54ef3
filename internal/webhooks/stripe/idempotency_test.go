package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	keys   map[string]time.Duration
	setErr error
	getErr error
	setCtx context.Context
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	if _, ok := m.keys[key]; ok {
		return "2026-10-16T00:00:00Z", nil
	}
	return "", goredis.Nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	m.setCtx = ctx
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = ttl
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.keys, key)
	}
	return nil
}

func TestIdempotencyGuardRecordsOnlyWhenMarked(t *testing.T) {
	store := newMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "")
	require.NoError(t, err)

	seen, err := guard.Processed(context.Background(), "evt_1")
	require.NoError(t, err)
	require.False(t, seen)
	seen, err = guard.Processed(context.Background(), "evt_1")
	require.NoError(t, err)
	require.False(t, seen, "checking must not record the event")
	require.Empty(t, store.keys)

	require.NoError(t, guard.MarkProcessed(context.Background(), "evt_1"))
	require.Equal(t, time.Hour, store.keys["test:stripe_webhook:evt_1"])

	seen, err = guard.Processed(context.Background(), "evt_1")
	require.NoError(t, err)
	require.True(t, seen)

	require.NoError(t, guard.MarkProcessed(context.Background(), "evt_1"))
}

func TestIdempotencyGuardMarkSurvivesCancelledContext(t *testing.T) {
	store := newMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Minute, "custom")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, guard.MarkProcessed(ctx, "evt_2"))
	require.NoError(t, store.setCtx.Err())
	require.Contains(t, store.keys, "test:custom:evt_2")
}

func TestIdempotencyGuardErrors(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "")
	require.Error(t, err)
	_, err = NewIdempotencyGuard(newMemoryStore(), -time.Second, "")
	require.Error(t, err)

	store := newMemoryStore()
	store.setErr = errors.New("redis down")
	store.getErr = errors.New("redis timeout")
	guard, err := NewIdempotencyGuard(store, time.Minute, "")
	require.NoError(t, err)

	require.ErrorContains(t, guard.MarkProcessed(context.Background(), "evt_3"), "redis down")
	_, err = guard.Processed(context.Background(), "evt_3")
	require.ErrorContains(t, err, "redis timeout")
	_, err = guard.Processed(context.Background(), "")
	require.Error(t, err)
	require.Error(t, guard.MarkProcessed(context.Background(), ""))

	var nilGuard *IdempotencyGuard
	seen, err := nilGuard.Processed(context.Background(), "evt_4")
	require.NoError(t, err)
	require.False(t, seen)
	require.NoError(t, nilGuard.MarkProcessed(context.Background(), "evt_4"))
}
