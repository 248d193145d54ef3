package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Coco120903/BananaMeow-sub000/api/responses"
	"github.com/Coco120903/BananaMeow-sub000/api/validators"
	checkoutsvc "github.com/Coco120903/BananaMeow-sub000/internal/checkout"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

type donationCheckoutRequest struct {
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Frequency string           `json:"frequency" validate:"omitempty,max=32"`
	Type      string           `json:"type" validate:"omitempty,max=64"`
	Cat       string           `json:"cat" validate:"omitempty,max=64"`
	Email     string           `json:"email" validate:"omitempty,max=254"`
}

type orderCheckoutItem struct {
	ProductID string           `json:"productId" validate:"omitempty,max=64"`
	Name      string           `json:"name" validate:"required,max=200"`
	Price     *decimal.Decimal `json:"price" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,min=1,max=1000"`
}

type orderCheckoutRequest struct {
	Items []orderCheckoutItem `json:"items" validate:"required,min=1,max=100,dive"`
	Email string              `json:"email" validate:"omitempty,max=254"`
}

// CheckoutDonation opens a hosted checkout for a one-time or monthly donation.
func CheckoutDonation(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload donationCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateDonationCheckout(r.Context(), checkoutsvc.DonationInput{
			Amount:       *payload.Amount,
			Frequency:    payload.Frequency,
			DonationType: payload.Type,
			TargetCat:    payload.Cat,
			Email:        payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutOrder opens a hosted checkout for a merchandise cart.
func CheckoutOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload orderCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkoutsvc.OrderItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, checkoutsvc.OrderItemInput{
				ProductID: strings.TrimSpace(item.ProductID),
				Name:      validators.SanitizeString(item.Name, 200),
				UnitPrice: *item.Price,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.CreateOrderCheckout(r.Context(), checkoutsvc.OrderInput{
			Items: items,
			Email: payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutSession reports the ledger status behind a checkout session.
func CheckoutSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		status, err := svc.LookupSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
