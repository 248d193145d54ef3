package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/Coco120903/BananaMeow-sub000/api/responses"
	stripewebhook "github.com/Coco120903/BananaMeow-sub000/internal/webhooks/stripe"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/metrics"
	stripeclient "github.com/Coco120903/BananaMeow-sub000/pkg/stripe"
	"github.com/Coco120903/BananaMeow-sub000/pkg/types"
)

const maxWebhookBody = 1 << 20

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) (stripewebhook.Outcome, error)
}

type stripeWebhookGuard interface {
	Processed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

type eventDecoder interface {
	DecodeEvent(payload []byte, signature string) (stripe.Event, error)
	VerifiesSignatures() bool
}

type webhookObserver interface {
	Observe(eventType, outcome string, d time.Duration)
}

// StripeWebhook receives checkout and charge events from Stripe. An event id
// is recorded only after HandleEvent succeeds. A nil guard disables event-id
// dedupe; the ledger's conditional updates still apply.
func StripeWebhook(svc StripeWebhookService, decoder eventDecoder, guard stripeWebhookGuard, observer webhookObserver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		started := time.Now()

		if svc == nil || decoder == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		if !decoder.VerifiesSignatures() && logg != nil {
			logg.Warn(logg.WithField(ctx, "event", "webhook.unverified"), "stripe signing secret not configured; accepting unverified payload")
		}

		event, err := decoder.DecodeEvent(payload, r.Header.Get(stripeclient.SignatureHeader))
		if err != nil {
			observe(observer, "unknown", metrics.OutcomeRejected, started)
			if errors.Is(err, stripeclient.ErrMissingSignature) || errors.Is(err, stripeclient.ErrInvalidSignature) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "verify stripe signature"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe event"))
			return
		}
		eventType := string(event.Type)
		if logg != nil {
			ctx = logg.WithEvent(ctx, event.ID, eventType)
		}

		if guard != nil {
			seen, err := guard.Processed(ctx, event.ID)
			if err != nil {
				observe(observer, eventType, metrics.OutcomeFailed, started)
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if seen {
				observe(observer, eventType, metrics.OutcomeDuplicate, started)
				if logg != nil {
					logg.Info(ctx, "stripe event already delivered")
				}
				writeReceived(w)
				return
			}
		}

		outcome, err := svc.HandleEvent(ctx, &event)
		if err != nil {
			observe(observer, eventType, metrics.OutcomeFailed, started)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if guard != nil {
			if err := guard.MarkProcessed(ctx, event.ID); err != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "failed to record processed stripe event")
			}
		}

		observe(observer, eventType, string(outcome), started)
		writeReceived(w)
	}
}

func writeReceived(w http.ResponseWriter) {
	responses.WriteSuccess(w, types.WebhookAck{Received: true})
}

func observe(observer webhookObserver, eventType, outcome string, started time.Time) {
	if observer == nil {
		return
	}
	observer.Observe(eventType, outcome, time.Since(started))
}
