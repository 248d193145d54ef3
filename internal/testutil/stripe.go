package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

// StripeEventPayload renders a webhook body for the given event type and data object.
func StripeEventPayload(t *testing.T, eventID, eventType string, object map[string]any) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	return body
}

// SignStripePayload builds a Stripe-Signature header value for payload.
func SignStripePayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// CompletedSession is the data object of a checkout.session.completed event.
func CompletedSession(sessionID, email, paymentIntentID string) map[string]any {
	object := map[string]any{
		"id":             sessionID,
		"object":         "checkout.session",
		"status":         "complete",
		"payment_status": "paid",
	}
	if email != "" {
		object["customer_details"] = map[string]any{"email": email}
	}
	if paymentIntentID != "" {
		object["payment_intent"] = paymentIntentID
	}
	return object
}
