package controllers

import (
	"net/http"
	"strings"

	"github.com/Coco120903/BananaMeow-sub000/api/responses"
	"github.com/Coco120903/BananaMeow-sub000/api/validators"
	"github.com/Coco120903/BananaMeow-sub000/internal/ledger"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
	"github.com/Coco120903/BananaMeow-sub000/pkg/pagination"
)

// AdminOrders lists orders newest first, optionally filtered by status.
func AdminOrders(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminDonations lists donations newest first, optionally filtered by status.
func AdminDonations(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListDonations(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func listInput(r *http.Request) (ledger.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return ledger.ListInput{}, err
	}
	q := r.URL.Query()
	return ledger.ListInput{
		Status: strings.TrimSpace(q.Get("status")),
		Limit:  limit,
		Cursor: strings.TrimSpace(q.Get("cursor")),
	}, nil
}
