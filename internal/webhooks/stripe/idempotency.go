package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Coco120903/BananaMeow-sub000/pkg/redis"
)

// EventScope namespaces processed Stripe event ids in the idempotency store.
const EventScope = "stripe_webhook"

// IdempotencyGuard records event ids once reconciliation has committed so
// exact redeliveries can be acked without touching the ledger. An id is only
// written after success; a delivery that fails, is cancelled or panics leaves
// no record and Stripe's retry is processed again. The ledger's conditional
// updates stay authoritative for concurrent duplicates.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
	now   func() time.Time
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		scope = EventScope
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope, now: time.Now}, nil
}

// Processed reports whether eventID was already reconciled. A nil guard
// never reports a duplicate.
func (g *IdempotencyGuard) Processed(ctx context.Context, eventID string) (bool, error) {
	if g == nil {
		return false, nil
	}
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	value, err := g.store.Get(ctx, key)
	if redis.IsNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read processed event %s: %w", eventID, err)
	}
	return value != "", nil
}

// MarkProcessed records eventID after its reconciliation committed. The write
// ignores cancellation of ctx so a client disconnect after commit still
// leaves the record behind.
func (g *IdempotencyGuard) MarkProcessed(ctx context.Context, eventID string) error {
	if g == nil {
		return nil
	}
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	stamp := g.now().UTC().Format(time.RFC3339)
	if _, err := g.store.SetNX(context.WithoutCancel(ctx), key, stamp, g.ttl); err != nil {
		return fmt.Errorf("record processed event %s: %w", eventID, err)
	}
	return nil
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(g.scope, eventID), nil
}
