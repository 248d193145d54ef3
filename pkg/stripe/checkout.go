package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

// SessionMode selects one-off payment or subscription billing.
type SessionMode string

const (
	ModePayment      SessionMode = SessionMode(stripe.CheckoutSessionModePayment)
	ModeSubscription SessionMode = SessionMode(stripe.CheckoutSessionModeSubscription)
)

// LineItem is one ad-hoc priced line on a hosted checkout page.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	// Interval makes the price recurring ("month"); empty for one-time prices.
	Interval string
}

// SessionRequest carries everything needed to open a hosted checkout session.
type SessionRequest struct {
	Mode          SessionMode
	Currency      string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// Session is the subset of the created session the service keeps.
type Session struct {
	ID  string
	URL string
}

// CreateCheckoutSession opens a hosted checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(req.LineItems) == 0 {
		return nil, errors.New("checkout session requires at least one line item")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(req.Mode)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems:  make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems)),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	for _, item := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			product.Description = stripe.String(item.Description)
		}
		price := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(req.Currency),
			ProductData: product,
			UnitAmount:  stripe.Int64(item.UnitAmount),
		}
		if item.Interval != "" {
			price.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval: stripe.String(item.Interval),
			}
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: price,
			Quantity:  stripe.Int64(item.Quantity),
		})
	}

	created, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{ID: created.ID, URL: created.URL}, nil
}

// SessionIDForPaymentIntent returns the checkout session that produced the
// payment intent, or "" when Stripe knows of none.
func (c *Client) SessionIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := c.sessions.List(params)
	if iter.Next() {
		return iter.CheckoutSession().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list checkout sessions: %w", err)
	}
	return "", nil
}
