package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/metrics"
)

// CheckoutExpiryJobName labels the sweeper in logs, metrics and the run lock.
const CheckoutExpiryJobName = "checkout-expiry"

const defaultPendingTTL = 48 * time.Hour

type pendingExpirer interface {
	ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// CheckoutExpiryJobParams configure the stale checkout sweeper.
type CheckoutExpiryJobParams struct {
	Logger     *logger.Logger
	Orders     pendingExpirer
	Donations  pendingExpirer
	Metrics    *metrics.CronJobMetrics
	PendingTTL time.Duration
}

// NewCheckoutExpiryJob builds the job that closes out checkouts whose
// completion event never arrived. Orders become cancelled and donations
// become expired; reserved stock is untouched because stock only moves on
// completion.
func NewCheckoutExpiryJob(params CheckoutExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Donations == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}
	return &checkoutExpiryJob{
		logg:      params.Logger,
		orders:    params.Orders,
		donations: params.Donations,
		metrics:   params.Metrics,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

type checkoutExpiryJob struct {
	logg      *logger.Logger
	orders    pendingExpirer
	donations pendingExpirer
	metrics   *metrics.CronJobMetrics
	ttl       time.Duration
	now       func() time.Time
}

func (j *checkoutExpiryJob) Name() string { return CheckoutExpiryJobName }

func (j *checkoutExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.ttl)
	ctx = j.logg.WithField(ctx, "cutoff", cutoff.Format(time.RFC3339))

	var errs []error
	if err := j.sweep(ctx, enums.LedgerKindOrder, j.orders, cutoff, now); err != nil {
		errs = append(errs, err)
	}
	if err := j.sweep(ctx, enums.LedgerKindDonation, j.donations, cutoff, now); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *checkoutExpiryJob) sweep(ctx context.Context, kind enums.LedgerKind, repo pendingExpirer, cutoff, now time.Time) error {
	n, err := repo.ExpirePendingBefore(ctx, cutoff, now)
	if err != nil {
		return fmt.Errorf("expire pending %ss: %w", kind, err)
	}
	j.metrics.AddExpired(kind.String(), n)
	if n > 0 {
		kindCtx := j.logg.WithFields(ctx, map[string]any{"kind": kind.String(), "expired": n})
		j.logg.Info(kindCtx, "stale checkouts expired")
	}
	return nil
}
