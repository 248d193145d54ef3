package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Coco120903/BananaMeow-sub000/internal/donations"
	"github.com/Coco120903/BananaMeow-sub000/internal/orders"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/pagination"
)

// Service exposes read-only admin views over orders and donations.
type Service interface {
	ListOrders(ctx context.Context, input ListInput) (*OrderPage, error)
	ListDonations(ctx context.Context, input ListInput) (*DonationPage, error)
}

// ListInput is the raw query of an admin listing.
type ListInput struct {
	Status string
	Limit  int
	Cursor string
}

type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type DonationPage struct {
	Donations  []DonationView `json:"donations"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type OrderView struct {
	ID              uuid.UUID  `json:"id"`
	SessionID       string     `json:"session_id"`
	Status          string     `json:"status"`
	TotalCents      int64      `json:"total_cents"`
	Currency        string     `json:"currency"`
	Email           string     `json:"email,omitempty"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	Items           []LineView `json:"items"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type LineView struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
}

type DonationView struct {
	ID              uuid.UUID  `json:"id"`
	SessionID       string     `json:"session_id"`
	Status          string     `json:"status"`
	AmountCents     int64      `json:"amount_cents"`
	Currency        string     `json:"currency"`
	Frequency       string     `json:"frequency"`
	DonationType    string     `json:"donation_type,omitempty"`
	TargetCat       string     `json:"target_cat,omitempty"`
	Email           string     `json:"email,omitempty"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	SubscriptionID  string     `json:"subscription_id,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ExpiredAt       *time.Time `json:"expired_at,omitempty"`
	RefundedAt      *time.Time `json:"refunded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type service struct {
	orders    orders.Repository
	donations donations.Repository
}

// NewService wires the admin ledger reads.
func NewService(ordersRepo orders.Repository, donationsRepo donations.Repository) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if donationsRepo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	return &service{orders: ordersRepo, donations: donationsRepo}, nil
}

func (s *service) ListOrders(ctx context.Context, input ListInput) (*OrderPage, error) {
	limit := pagination.NormalizeLimit(input.Limit)
	cursor, err := parseCursor(input.Cursor)
	if err != nil {
		return nil, err
	}
	params := orders.ListParams{Limit: limit, Cursor: cursor}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &status
	}

	rows, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	page, next := pagination.Trim(rows, limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})

	out := &OrderPage{Orders: make([]OrderView, 0, len(page)), NextCursor: next}
	for _, order := range page {
		out.Orders = append(out.Orders, orderView(order))
	}
	return out, nil
}

func (s *service) ListDonations(ctx context.Context, input ListInput) (*DonationPage, error) {
	limit := pagination.NormalizeLimit(input.Limit)
	cursor, err := parseCursor(input.Cursor)
	if err != nil {
		return nil, err
	}
	params := donations.ListParams{Limit: limit, Cursor: cursor}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status, err := enums.ParseDonationStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		params.Status = &status
	}

	rows, err := s.donations.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donations")
	}
	page, next := pagination.Trim(rows, limit, func(d models.Donation) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.CreatedAt, ID: d.ID}
	})

	out := &DonationPage{Donations: make([]DonationView, 0, len(page)), NextCursor: next}
	for _, donation := range page {
		out.Donations = append(out.Donations, donationView(donation))
	}
	return out, nil
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(strings.TrimSpace(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func orderView(order models.Order) OrderView {
	items := make([]LineView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineView{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}
	return OrderView{
		ID:              order.ID,
		SessionID:       order.SessionID,
		Status:          order.Status.String(),
		TotalCents:      order.TotalCents,
		Currency:        order.Currency,
		Email:           order.Email,
		PaymentIntentID: order.PaymentIntentID,
		Items:           items,
		PaidAt:          order.PaidAt,
		CancelledAt:     order.CancelledAt,
		RefundedAt:      order.RefundedAt,
		CreatedAt:       order.CreatedAt,
	}
}

func donationView(d models.Donation) DonationView {
	return DonationView{
		ID:              d.ID,
		SessionID:       d.SessionID,
		Status:          d.Status.String(),
		AmountCents:     d.AmountCents,
		Currency:        d.Currency,
		Frequency:       d.Frequency.String(),
		DonationType:    d.DonationType,
		TargetCat:       d.TargetCat,
		Email:           d.Email,
		PaymentIntentID: d.PaymentIntentID,
		SubscriptionID:  d.SubscriptionID,
		CompletedAt:     d.CompletedAt,
		ExpiredAt:       d.ExpiredAt,
		RefundedAt:      d.RefundedAt,
		CreatedAt:       d.CreatedAt,
	}
}
