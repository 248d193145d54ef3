package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

var (
	// ErrMissingSignature is returned when verification is enabled but the header is absent.
	ErrMissingSignature = errors.New("stripe signature header is missing")
	// ErrInvalidSignature wraps every verification failure.
	ErrInvalidSignature = errors.New("stripe signature verification failed")
)

// VerifiesSignatures reports whether webhook payloads are checked against a signing secret.
func (c *Client) VerifiesSignatures() bool {
	return c.SigningSecret() != ""
}

// DecodeEvent turns a raw webhook payload into an event. With a signing secret
// the signature is verified first; without one the payload is decoded as-is.
func (c *Client) DecodeEvent(payload []byte, signature string) (stripe.Event, error) {
	if !c.VerifiesSignatures() {
		return decodeUnverified(payload)
	}
	return VerifyEvent(payload, signature, c.SigningSecret())
}

// VerifyEvent checks signature against secret and returns the parsed event.
func VerifyEvent(payload []byte, signature, secret string) (stripe.Event, error) {
	if signature == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

func decodeUnverified(payload []byte) (stripe.Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, fmt.Errorf("decode stripe event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return stripe.Event{}, errors.New("stripe event is missing id or type")
	}
	return event, nil
}
