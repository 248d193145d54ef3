package stripewebhook

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/internal/donations"
	"github.com/Coco120903/BananaMeow-sub000/internal/notifications"
	"github.com/Coco120903/BananaMeow-sub000/internal/orders"
	"github.com/Coco120903/BananaMeow-sub000/internal/products"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/metrics"
	stripeclient "github.com/Coco120903/BananaMeow-sub000/pkg/stripe"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SessionLookup resolves the checkout session behind a payment intent.
type SessionLookup interface {
	SessionIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error)
}

type notifier interface {
	Dispatch(ctx context.Context, n notifications.Notification) bool
}

type compensationRecorder interface {
	IncCompensation()
}

// Outcome summarizes what an event did to the ledger.
type Outcome string

const (
	OutcomeApplied   Outcome = metrics.OutcomeApplied
	OutcomeDuplicate Outcome = metrics.OutcomeDuplicate
	OutcomeIgnored   Outcome = metrics.OutcomeIgnored
)

// ServiceParams groups the reconciler dependencies.
type ServiceParams struct {
	TransactionRunner txRunner
	Orders            orders.Repository
	Donations         donations.Repository
	Products          products.Repository
	Sessions          SessionLookup
	Notifier          notifier
	Logger            *logger.Logger
	Metrics           compensationRecorder
	Now               func() time.Time
}

// Service reconciles gateway events against pending ledger records.
type Service struct {
	tx        txRunner
	orders    orders.Repository
	donations donations.Repository
	products  products.Repository
	sessions  SessionLookup
	notifier  notifier
	logg      *logger.Logger
	metrics   compensationRecorder
	now       func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donations repo required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repo required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		tx:        params.TransactionRunner,
		orders:    params.Orders,
		donations: params.Donations,
		products:  params.Products,
		sessions:  params.Sessions,
		notifier:  params.Notifier,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       params.Now,
	}, nil
}

// HandleEvent parses and applies a gateway event. A nil error with
// OutcomeDuplicate means nothing was pending for the event.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (Outcome, error) {
	parsed, err := ParseEvent(event)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode stripe event")
	}
	return s.Apply(ctx, parsed)
}

// Apply dispatches an already parsed event.
func (s *Service) Apply(ctx context.Context, event Event) (Outcome, error) {
	ctx = s.logg.WithEvent(ctx, event.ID(), event.Type())
	switch ev := event.(type) {
	case SessionCompleted:
		return s.completeSession(ctx, ev)
	case SessionExpired:
		return s.expireSession(ctx, ev)
	case ChargeRefunded:
		return s.refundCharge(ctx, ev)
	case Unknown:
		s.logg.Info(ctx, "ignoring unhandled stripe event")
		return OutcomeIgnored, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeInternal, "unsupported event variant")
	}
}

func (s *Service) completeSession(ctx context.Context, ev SessionCompleted) (Outcome, error) {
	ctx = s.logg.WithSessionID(ctx, ev.SessionID)
	now := s.now()

	var notice *notifications.Notification
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		paid, err := ordersRepo.Transition(ctx, orders.Transition{
			SessionID:       ev.SessionID,
			From:            enums.OrderStatusPending,
			To:              enums.OrderStatusPaid,
			Email:           ev.Email,
			PaymentIntentID: ev.PaymentIntentID,
			At:              now,
		})
		if err != nil {
			return err
		}
		if paid {
			order, err := ordersRepo.FindBySessionID(ctx, ev.SessionID)
			if err != nil {
				return err
			}
			if err := s.decrementInventory(ctx, s.products.WithTx(tx), order); err != nil {
				return err
			}
			n := notifications.OrderReceipt(order)
			notice = &n
			return nil
		}

		donationsRepo := s.donations.WithTx(tx)
		completed, err := donationsRepo.Transition(ctx, donations.Transition{
			SessionID:       ev.SessionID,
			From:            enums.DonationStatusPending,
			To:              enums.DonationStatusCompleted,
			Email:           ev.Email,
			PaymentIntentID: ev.PaymentIntentID,
			SubscriptionID:  ev.SubscriptionID,
			At:              now,
		})
		if err != nil {
			return err
		}
		if completed {
			donation, err := donationsRepo.FindBySessionID(ctx, ev.SessionID)
			if err != nil {
				return err
			}
			n := notifications.DonationThankYou(donation)
			notice = &n
		}
		return nil
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reconcile completed checkout session")
	}

	if notice == nil {
		s.logg.Info(ctx, "no pending record for completed session; treating as duplicate")
		return OutcomeDuplicate, nil
	}
	s.logg.Info(ctx, "checkout session completed")
	if s.notifier != nil {
		s.notifier.Dispatch(ctx, *notice)
	}
	return OutcomeApplied, nil
}

// decrementInventory takes each purchased quantity off stock. A decrement that
// lands below zero is logged and reverted with a matching increment.
func (s *Service) decrementInventory(ctx context.Context, repo products.Repository, order *models.Order) error {
	for _, item := range order.Items {
		if item.ProductID == nil || item.Quantity <= 0 {
			continue
		}
		itemCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id": item.ProductID.String(),
			"quantity":   item.Quantity,
		})

		stock, err := repo.AdjustStock(ctx, *item.ProductID, -item.Quantity)
		if errors.Is(err, products.ErrNotFound) {
			s.logg.Warn(itemCtx, "purchased product no longer exists; skipping stock adjustment")
			continue
		}
		if err != nil {
			return err
		}
		if stock >= 0 {
			continue
		}

		s.logg.Warn(s.logg.WithField(itemCtx, "stock", stock), "stock went negative after purchase; compensating")
		if s.metrics != nil {
			s.metrics.IncCompensation()
		}
		if _, err := repo.AdjustStock(ctx, *item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) expireSession(ctx context.Context, ev SessionExpired) (Outcome, error) {
	ctx = s.logg.WithSessionID(ctx, ev.SessionID)
	now := s.now()

	cancelled, err := s.orders.Transition(ctx, orders.Transition{
		SessionID: ev.SessionID,
		From:      enums.OrderStatusPending,
		To:        enums.OrderStatusCancelled,
		At:        now,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel expired order")
	}
	if cancelled {
		s.logg.Info(ctx, "order cancelled after session expiry")
		return OutcomeApplied, nil
	}

	expired, err := s.donations.Transition(ctx, donations.Transition{
		SessionID: ev.SessionID,
		From:      enums.DonationStatusPending,
		To:        enums.DonationStatusExpired,
		At:        now,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire donation")
	}
	if expired {
		s.logg.Info(ctx, "donation expired after session expiry")
		return OutcomeApplied, nil
	}

	s.logg.Info(ctx, "no pending record for expired session")
	return OutcomeDuplicate, nil
}

func (s *Service) refundCharge(ctx context.Context, ev ChargeRefunded) (Outcome, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"charge_id":         ev.ChargeID,
		"payment_intent_id": ev.PaymentIntentID,
		"amount_refunded":   ev.AmountRefunded,
		"fully_refunded":    ev.FullyRefunded,
	})
	if ev.PaymentIntentID == "" {
		s.logg.Warn(ctx, "refunded charge has no payment intent; cannot correlate")
		return OutcomeIgnored, nil
	}

	sessionID, err := s.sessionForPaymentIntent(ctx, ev.PaymentIntentID)
	if err != nil {
		return "", err
	}
	if sessionID == "" {
		s.logg.Warn(ctx, "no checkout session found for refunded charge")
		return OutcomeIgnored, nil
	}
	ctx = s.logg.WithSessionID(ctx, sessionID)
	now := s.now()

	refunded, err := s.orders.Transition(ctx, orders.Transition{
		SessionID:       sessionID,
		From:            enums.OrderStatusPaid,
		To:              enums.OrderStatusRefunded,
		PaymentIntentID: ev.PaymentIntentID,
		At:              now,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refund order")
	}
	if !refunded {
		refunded, err = s.donations.Transition(ctx, donations.Transition{
			SessionID:       sessionID,
			From:            enums.DonationStatusCompleted,
			To:              enums.DonationStatusRefunded,
			PaymentIntentID: ev.PaymentIntentID,
			At:              now,
		})
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refund donation")
		}
	}
	if !refunded {
		s.logg.Info(ctx, "refund matched no settled record; treating as duplicate")
		return OutcomeDuplicate, nil
	}
	s.logg.Info(ctx, "ledger record refunded")
	return OutcomeApplied, nil
}

// sessionForPaymentIntent prefers the stored correlation and falls back to
// asking the gateway which session created the intent.
func (s *Service) sessionForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	order, err := s.orders.FindByPaymentIntentID(ctx, paymentIntentID)
	if err == nil {
		return order.SessionID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order by payment intent")
	}

	donation, err := s.donations.FindByPaymentIntentID(ctx, paymentIntentID)
	if err == nil {
		return donation.SessionID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find donation by payment intent")
	}

	if s.sessions == nil {
		return "", nil
	}
	sessionID, err := s.sessions.SessionIDForPaymentIntent(ctx, paymentIntentID)
	if errors.Is(err, stripeclient.ErrNotConfigured) {
		s.logg.Warn(ctx, "stripe api key missing; cannot resolve session for refund")
		return "", nil
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeGateway, err, "lookup checkout session for payment intent")
	}
	return sessionID, nil
}
