package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	checkoutsvc "github.com/Coco120903/BananaMeow-sub000/internal/checkout"
	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/types"
)

type stubCheckout struct {
	donation *checkoutsvc.DonationInput
	order    *checkoutsvc.OrderInput
	err      error
}

func (s *stubCheckout) CreateDonationCheckout(_ context.Context, input checkoutsvc.DonationInput) (*checkoutsvc.Result, error) {
	s.donation = &input
	if s.err != nil {
		return nil, s.err
	}
	return &checkoutsvc.Result{URL: "https://checkout.stripe.com/c/pay/cs_don", SessionID: "cs_don"}, nil
}

func (s *stubCheckout) CreateOrderCheckout(_ context.Context, input checkoutsvc.OrderInput) (*checkoutsvc.Result, error) {
	s.order = &input
	if s.err != nil {
		return nil, s.err
	}
	return &checkoutsvc.Result{URL: "https://checkout.stripe.com/c/pay/cs_ord", SessionID: "cs_ord"}, nil
}

func (s *stubCheckout) LookupSession(_ context.Context, sessionID string) (*checkoutsvc.SessionStatus, error) {
	if sessionID != "cs_known" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return &checkoutsvc.SessionStatus{Kind: enums.LedgerKindOrder, Status: "paid", AmountCents: 2000, Currency: "usd"}, nil
}

func postJSON(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutDonationCreatesSession(t *testing.T) {
	svc := &stubCheckout{}
	rec := postJSON(CheckoutDonation(svc, nil), `{"amount":25.5,"frequency":"monthly","type":"Food","cat":"Banana","email":"fan@example.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	data := body.Data.(map[string]any)
	require.Equal(t, "cs_don", data["session_id"])
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_don", data["url"])

	require.NotNil(t, svc.donation)
	require.True(t, svc.donation.Amount.Equal(decimal.RequireFromString("25.5")))
	require.Equal(t, "monthly", svc.donation.Frequency)
	require.Equal(t, "Banana", svc.donation.TargetCat)
}

func TestCheckoutDonationRequiresAmount(t *testing.T) {
	svc := &stubCheckout{}
	rec := postJSON(CheckoutDonation(svc, nil), `{"frequency":"one-time"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, svc.donation)
}

func TestCheckoutOrderMapsItems(t *testing.T) {
	svc := &stubCheckout{}
	rec := postJSON(CheckoutOrder(svc, nil), `{"items":[{"productId":"p1","name":" Mug ","price":10,"quantity":2}]}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, svc.order.Items, 1)
	item := svc.order.Items[0]
	require.Equal(t, "p1", item.ProductID)
	require.Equal(t, "Mug", item.Name)
	require.Equal(t, 2, item.Quantity)
	require.True(t, item.UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestCheckoutOrderErrors(t *testing.T) {
	rec := postJSON(CheckoutOrder(&stubCheckout{}, nil), `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(CheckoutOrder(&stubCheckout{}, nil), `{"items":[{"name":"Mug","price":10,"quantity":0}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeInsufficientInventory, "insufficient inventory for Mug")}
	rec = postJSON(CheckoutOrder(svc, nil), `{"items":[{"productId":"p1","name":"Mug","price":10,"quantity":9}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "INSUFFICIENT_INVENTORY", body.Error.Code)
	require.Contains(t, body.Error.Message, "Mug")

	svc = &stubCheckout{err: pkgerrors.New(pkgerrors.CodeConfiguration, "stripe not configured")}
	rec = postJSON(CheckoutOrder(svc, nil), `{"items":[{"name":"Mug","price":10,"quantity":1}]}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCheckoutSessionLookup(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/sessions/{sessionID}", CheckoutSession(&stubCheckout{}, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/cs_known", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "paid", body.Data.(map[string]any)["status"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/cs_nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	ok := HealthReady(cfg, nil, map[string]Pinger{
		"db":    pingFunc(func(context.Context) error { return nil }),
		"redis": nil,
	})
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get(envHeader))

	down := HealthReady(cfg, nil, map[string]Pinger{
		"db": pingFunc(func(context.Context) error { return errors.New("refused") }),
	})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
