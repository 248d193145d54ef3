package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/internal/donations"
	"github.com/Coco120903/BananaMeow-sub000/internal/orders"
	"github.com/Coco120903/BananaMeow-sub000/internal/products"
	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	stripeclient "github.com/Coco120903/BananaMeow-sub000/pkg/stripe"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway opens hosted checkout sessions.
type Gateway interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req stripeclient.SessionRequest) (*stripeclient.Session, error)
}

type sessionRecorder interface {
	SessionCreated(kind string)
	SessionRejected(kind, reason string)
}

// Service creates checkout sessions and the pending ledger records behind them.
type Service interface {
	CreateDonationCheckout(ctx context.Context, input DonationInput) (*Result, error)
	CreateOrderCheckout(ctx context.Context, input OrderInput) (*Result, error)
	LookupSession(ctx context.Context, sessionID string) (*SessionStatus, error)
}

// DonationInput is a donation request from the storefront.
type DonationInput struct {
	Amount       decimal.Decimal
	Frequency    string
	DonationType string
	TargetCat    string
	Email        string
}

// OrderItemInput is one cart line as submitted by the payer.
type OrderItemInput struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// OrderInput is a cart checkout request.
type OrderInput struct {
	Items []OrderItemInput
	Email string
}

// Result points the payer at the hosted checkout page.
type Result struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// SessionStatus is what the success page shows for a session. Amount repeats
// AmountCents in major units with two decimals.
type SessionStatus struct {
	Kind        enums.LedgerKind `json:"kind"`
	Status      string           `json:"status"`
	AmountCents int64            `json:"amount_cents"`
	Amount      string           `json:"amount"`
	Currency    string           `json:"currency"`
}

// Deps groups the collaborators of the checkout service.
type Deps struct {
	Tx        txRunner
	Gateway   Gateway
	Orders    orders.Repository
	Donations donations.Repository
	Products  products.Repository
	Config    config.CheckoutConfig
	Logger    *logger.Logger
	Metrics   sessionRecorder
}

type service struct {
	tx        txRunner
	gateway   Gateway
	orders    orders.Repository
	donations donations.Repository
	products  products.Repository
	cfg       config.CheckoutConfig
	logg      *logger.Logger
	metrics   sessionRecorder
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Donations == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = noopRecorder{}
	}
	if strings.TrimSpace(deps.Config.Currency) == "" {
		deps.Config.Currency = "usd"
	}
	return &service{
		tx:        deps.Tx,
		gateway:   deps.Gateway,
		orders:    deps.Orders,
		donations: deps.Donations,
		products:  deps.Products,
		cfg:       deps.Config,
		logg:      deps.Logger,
		metrics:   deps.Metrics,
	}, nil
}

func (s *service) CreateDonationCheckout(ctx context.Context, input DonationInput) (*Result, error) {
	kind := enums.LedgerKindDonation.String()
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	amountCents, err := ToMinorUnits(input.Amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount is too large")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount is below the smallest chargeable unit")
	}
	if err := s.requireGateway(kind); err != nil {
		return nil, err
	}

	frequency := enums.NormalizeDonationFrequency(input.Frequency)
	email := s.payerEmail(ctx, input.Email)

	item := stripeclient.LineItem{
		Name:        donationLineName(input.DonationType, frequency),
		Description: donationLineDescription(input.TargetCat),
		UnitAmount:  amountCents,
		Quantity:    1,
	}
	mode := stripeclient.ModePayment
	if frequency.IsRecurring() {
		mode = stripeclient.ModeSubscription
		item.Interval = "month"
	}

	session, err := s.openSession(ctx, kind, stripeclient.SessionRequest{
		Mode:          mode,
		Currency:      s.cfg.Currency,
		LineItems:     []stripeclient.LineItem{item},
		SuccessURL:    s.cfg.SuccessURL(),
		CancelURL:     s.cfg.CancelURL(),
		CustomerEmail: email,
		Metadata: map[string]string{
			"kind":      kind,
			"frequency": frequency.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	donation := &models.Donation{
		SessionID:    session.ID,
		Status:       enums.DonationStatusPending,
		AmountCents:  amountCents,
		Currency:     s.cfg.Currency,
		Frequency:    frequency,
		DonationType: strings.TrimSpace(input.DonationType),
		TargetCat:    strings.TrimSpace(input.TargetCat),
		Email:        email,
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist pending donation")
	}

	s.metrics.SessionCreated(kind)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id":   session.ID,
		"amount_cents": amountCents,
		"frequency":    frequency.String(),
	}), "donation checkout created")
	return &Result{URL: session.URL, SessionID: session.ID}, nil
}

func (s *service) CreateOrderCheckout(ctx context.Context, input OrderInput) (*Result, error) {
	kind := enums.LedgerKindOrder.String()
	lines, total, err := buildLines(input.Items)
	if err != nil {
		return nil, err
	}
	if err := s.requireGateway(kind); err != nil {
		return nil, err
	}
	if err := s.checkInventory(ctx, input.Items, lines); err != nil {
		s.metrics.SessionRejected(kind, "insufficient_inventory")
		return nil, err
	}

	email := s.payerEmail(ctx, input.Email)
	items := make([]stripeclient.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, stripeclient.LineItem{
			Name:       line.Name,
			UnitAmount: line.UnitPriceCents,
			Quantity:   int64(line.Quantity),
		})
	}

	session, err := s.openSession(ctx, kind, stripeclient.SessionRequest{
		Mode:          stripeclient.ModePayment,
		Currency:      s.cfg.Currency,
		LineItems:     items,
		SuccessURL:    s.cfg.SuccessURL(),
		CancelURL:     s.cfg.CancelURL(),
		CustomerEmail: email,
		Metadata:      map[string]string{"kind": kind},
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		SessionID:  session.ID,
		Status:     enums.OrderStatusPending,
		TotalCents: total,
		Currency:   s.cfg.Currency,
		Email:      email,
		Items:      lines,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist pending order")
	}

	s.metrics.SessionCreated(kind)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id":  session.ID,
		"total_cents": total,
		"line_items":  len(lines),
	}), "order checkout created")
	return &Result{URL: session.URL, SessionID: session.ID}, nil
}

func (s *service) LookupSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	order, err := s.orders.FindBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		return &SessionStatus{
			Kind:        enums.LedgerKindOrder,
			Status:      order.Status.String(),
			AmountCents: order.TotalCents,
			Amount:      FromMinorUnits(order.TotalCents).StringFixed(2),
			Currency:    order.Currency,
		}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order by session")
	}

	donation, err := s.donations.FindBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		return &SessionStatus{
			Kind:        enums.LedgerKindDonation,
			Status:      donation.Status.String(),
			AmountCents: donation.AmountCents,
			Amount:      FromMinorUnits(donation.AmountCents).StringFixed(2),
			Currency:    donation.Currency,
		}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup donation by session")
	}
}

func (s *service) requireGateway(kind string) error {
	if s.gateway == nil || !s.gateway.Configured() {
		s.metrics.SessionRejected(kind, "not_configured")
		return pkgerrors.New(pkgerrors.CodeConfiguration, "payment gateway credentials are not configured")
	}
	return nil
}

func (s *service) openSession(ctx context.Context, kind string, req stripeclient.SessionRequest) (*stripeclient.Session, error) {
	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		s.metrics.SessionRejected(kind, "gateway_error")
		if errors.Is(err, stripeclient.ErrNotConfigured) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "payment gateway credentials are not configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create checkout session")
	}
	if session == nil || session.ID == "" {
		s.metrics.SessionRejected(kind, "gateway_error")
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "gateway returned an empty session")
	}
	return session, nil
}

// payerEmail drops addresses that do not look deliverable.
func (s *service) payerEmail(ctx context.Context, raw string) string {
	email, ok := normalizeEmail(raw)
	if email == "" {
		return ""
	}
	if !ok {
		s.logg.Warn(s.logg.WithField(ctx, "email", email), "ignoring invalid payer email")
		return ""
	}
	return email
}

// buildLines validates the cart and snapshots it as order line items.
func buildLines(items []OrderItemInput) ([]models.OrderLineItem, int64, error) {
	if len(items) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	lines := make([]models.OrderLineItem, 0, len(items))
	var total int64
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "item %d is missing a name", i+1)
		}
		if item.Quantity <= 0 {
			return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity for %s must be greater than zero", name)
		}
		if item.UnitPrice.IsNegative() {
			return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "price for %s cannot be negative", name)
		}

		unitCents, err := ToMinorUnits(item.UnitPrice)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price for "+name+" is too large")
		}
		subtotal, err := lineTotal(unitCents, item.Quantity)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "line total for "+name+" is too large")
		}
		if total, err = addCharge(total, subtotal); err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order total is too large")
		}

		line := models.OrderLineItem{
			Name:           name,
			UnitPriceCents: unitCents,
			Quantity:       item.Quantity,
		}
		if id, err := uuid.Parse(strings.TrimSpace(item.ProductID)); err == nil {
			line.ProductID = &id
		}
		lines = append(lines, line)
	}
	if total <= 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order total must be greater than zero")
	}
	return lines, total, nil
}

// checkInventory refuses the cart when a referenced product is unknown or
// short on stock. Quantities of repeated products are summed.
func (s *service) checkInventory(ctx context.Context, inputs []OrderItemInput, lines []models.OrderLineItem) error {
	requested := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for i, line := range lines {
		if strings.TrimSpace(inputs[i].ProductID) == "" {
			continue
		}
		if line.ProductID == nil {
			return insufficientInventory(inputs[i].ProductID, line.Name, line.Quantity, 0)
		}
		if _, seen := requested[*line.ProductID]; !seen {
			ids = append(ids, *line.ProductID)
		}
		requested[*line.ProductID] += line.Quantity
	}
	if len(ids) == 0 {
		return nil
	}

	stock, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products for checkout")
	}

	for _, line := range lines {
		if line.ProductID == nil {
			continue
		}
		product, ok := stock[*line.ProductID]
		if !ok {
			return insufficientInventory(line.ProductID.String(), line.Name, requested[*line.ProductID], 0)
		}
		if product.Stock < requested[*line.ProductID] {
			return insufficientInventory(line.ProductID.String(), line.Name, requested[*line.ProductID], product.Stock)
		}
		if product.PriceCents != line.UnitPriceCents {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"event":           "price_mismatch",
				"product_id":      product.ID.String(),
				"submitted_cents": line.UnitPriceCents,
				"stored_cents":    product.PriceCents,
			}), "submitted price differs from catalog price")
		}
	}
	return nil
}

func insufficientInventory(productID, name string, requested, available int) error {
	if available < 0 {
		available = 0
	}
	return pkgerrors.Newf(pkgerrors.CodeInsufficientInventory, "insufficient inventory for %s", name).
		WithDetails(map[string]any{
			"product_id": productID,
			"name":       name,
			"requested":  requested,
			"available":  available,
		})
}

func donationLineName(donationType string, frequency enums.DonationFrequency) string {
	label := strings.TrimSpace(donationType)
	if label == "" {
		label = "General"
	}
	if frequency.IsRecurring() {
		return fmt.Sprintf("Monthly %s donation", label)
	}
	return fmt.Sprintf("%s donation", label)
}

func donationLineDescription(targetCat string) string {
	cat := strings.TrimSpace(targetCat)
	if cat == "" {
		return "Supporting the Banana Meow cats"
	}
	return fmt.Sprintf("Supporting %s", cat)
}

type noopRecorder struct{}

func (noopRecorder) SessionCreated(string)          {}
func (noopRecorder) SessionRejected(string, string) {}
