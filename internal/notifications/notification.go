package notifications

import (
	"context"

	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
)

// Notification is one transactional email request.
type Notification struct {
	Kind         enums.NotificationKind `json:"kind"`
	To           string                 `json:"to"`
	From         string                 `json:"from,omitempty"`
	SessionID    string                 `json:"session_id"`
	AmountCents  int64                  `json:"amount_cents"`
	Currency     string                 `json:"currency"`
	Lines        []Line                 `json:"lines,omitempty"`
	Frequency    string                 `json:"frequency,omitempty"`
	DonationType string                 `json:"donation_type,omitempty"`
	TargetCat    string                 `json:"target_cat,omitempty"`
}

// Line is a receipt row.
type Line struct {
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// Sender delivers a notification. Implementations must honour ctx deadlines.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// OrderReceipt builds the receipt for a paid order.
func OrderReceipt(order *models.Order) Notification {
	lines := make([]Line, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, Line{
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return Notification{
		Kind:        enums.NotificationKindOrderReceipt,
		To:          order.Email,
		SessionID:   order.SessionID,
		AmountCents: order.TotalCents,
		Currency:    order.Currency,
		Lines:       lines,
	}
}

// DonationThankYou builds the thank-you for a completed donation. Monthly
// donations get the subscription variant.
func DonationThankYou(donation *models.Donation) Notification {
	kind := enums.NotificationKindDonationThankYou
	if donation.Frequency.IsRecurring() {
		kind = enums.NotificationKindSubscriptionStart
	}
	return Notification{
		Kind:         kind,
		To:           donation.Email,
		SessionID:    donation.SessionID,
		AmountCents:  donation.AmountCents,
		Currency:     donation.Currency,
		Frequency:    donation.Frequency.String(),
		DonationType: donation.DonationType,
		TargetCat:    donation.TargetCat,
	}
}
