package stripewebhook

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

// Event is the closed set of gateway events the reconciler understands.
type Event interface {
	ID() string
	Type() string
	isEvent()
}

// SessionCompleted means the payer finished a hosted checkout.
type SessionCompleted struct {
	EventID         string
	SessionID       string
	Email           string
	PaymentIntentID string
	SubscriptionID  string
}

// SessionExpired means the hosted checkout lapsed without payment.
type SessionExpired struct {
	EventID   string
	SessionID string
}

// ChargeRefunded means money was returned for a charge.
type ChargeRefunded struct {
	EventID         string
	ChargeID        string
	PaymentIntentID string
	AmountRefunded  int64
	FullyRefunded   bool
}

// Unknown is any event type the reconciler does not act on.
type Unknown struct {
	EventID   string
	EventType string
}

func (e SessionCompleted) ID() string   { return e.EventID }
func (e SessionCompleted) Type() string { return string(stripe.EventTypeCheckoutSessionCompleted) }
func (SessionCompleted) isEvent()       {}

func (e SessionExpired) ID() string   { return e.EventID }
func (e SessionExpired) Type() string { return string(stripe.EventTypeCheckoutSessionExpired) }
func (SessionExpired) isEvent()       {}

func (e ChargeRefunded) ID() string   { return e.EventID }
func (e ChargeRefunded) Type() string { return string(stripe.EventTypeChargeRefunded) }
func (ChargeRefunded) isEvent()       {}

func (e Unknown) ID() string   { return e.EventID }
func (e Unknown) Type() string { return e.EventType }
func (Unknown) isEvent()       {}

// ParseEvent decodes the data object of a gateway event into an Event.
func ParseEvent(event *stripe.Event) (Event, error) {
	if event == nil {
		return nil, fmt.Errorf("stripe event is nil")
	}
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := decodeObject(event, &session); err != nil {
			return nil, err
		}
		if session.ID == "" {
			return nil, fmt.Errorf("checkout session id missing")
		}
		out := SessionCompleted{
			EventID:   event.ID,
			SessionID: session.ID,
			Email:     sessionEmail(&session),
		}
		if session.PaymentIntent != nil {
			out.PaymentIntentID = session.PaymentIntent.ID
		}
		if session.Subscription != nil {
			out.SubscriptionID = session.Subscription.ID
		}
		return out, nil
	case stripe.EventTypeCheckoutSessionExpired:
		var session stripe.CheckoutSession
		if err := decodeObject(event, &session); err != nil {
			return nil, err
		}
		if session.ID == "" {
			return nil, fmt.Errorf("checkout session id missing")
		}
		return SessionExpired{EventID: event.ID, SessionID: session.ID}, nil
	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := decodeObject(event, &charge); err != nil {
			return nil, err
		}
		out := ChargeRefunded{
			EventID:        event.ID,
			ChargeID:       charge.ID,
			AmountRefunded: charge.AmountRefunded,
			FullyRefunded:  charge.Refunded,
		}
		if charge.PaymentIntent != nil {
			out.PaymentIntentID = charge.PaymentIntent.ID
		}
		return out, nil
	default:
		return Unknown{EventID: event.ID, EventType: string(event.Type)}, nil
	}
}

func decodeObject(event *stripe.Event, target any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("%s event has no data object", event.Type)
	}
	if err := json.Unmarshal(event.Data.Raw, target); err != nil {
		return fmt.Errorf("decode %s object: %w", event.Type, err)
	}
	return nil
}

func sessionEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
