package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Coco120903/BananaMeow-sub000/internal/donations"
	"github.com/Coco120903/BananaMeow-sub000/internal/orders"
	"github.com/Coco120903/BananaMeow-sub000/internal/testutil"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	pkgerrors "github.com/Coco120903/BananaMeow-sub000/pkg/errors"
)

func newService(t *testing.T) (Service, orders.Repository, donations.Repository) {
	t.Helper()
	conn := testutil.OpenSQLite(t)
	ordersRepo := orders.NewRepository(conn)
	donationsRepo := donations.NewRepository(conn)
	svc, err := NewService(ordersRepo, donationsRepo)
	require.NoError(t, err)
	return svc, ordersRepo, donationsRepo
}

func TestListOrdersPaginates(t *testing.T) {
	svc, ordersRepo, _ := newService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := enums.OrderStatusPending
		if i%2 == 0 {
			status = enums.OrderStatusPaid
		}
		require.NoError(t, ordersRepo.Create(context.Background(), &models.Order{
			SessionID:  fmt.Sprintf("cs_%d", i),
			Status:     status,
			TotalCents: int64(1000 * (i + 1)),
			Currency:   "usd",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			Items:      []models.OrderLineItem{{Name: "Mug", UnitPriceCents: 1000, Quantity: i + 1}},
		}))
	}

	first, err := svc.ListOrders(context.Background(), ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.Equal(t, "cs_4", first.Orders[0].SessionID)
	require.Equal(t, "cs_3", first.Orders[1].SessionID)
	require.Len(t, first.Orders[0].Items, 1)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListOrders(context.Background(), ListInput{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Equal(t, "cs_2", second.Orders[0].SessionID)
	require.Equal(t, "cs_1", second.Orders[1].SessionID)

	last, err := svc.ListOrders(context.Background(), ListInput{Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, last.Orders, 1)
	require.Empty(t, last.NextCursor)

	paid, err := svc.ListOrders(context.Background(), ListInput{Status: "paid"})
	require.NoError(t, err)
	require.Len(t, paid.Orders, 3)
	for _, order := range paid.Orders {
		require.Equal(t, "paid", order.Status)
	}
}

func TestListDonationsFiltersByStatus(t *testing.T) {
	svc, _, donationsRepo := newService(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	statuses := []enums.DonationStatus{enums.DonationStatusPending, enums.DonationStatusCompleted, enums.DonationStatusCompleted}
	for i, status := range statuses {
		require.NoError(t, donationsRepo.Create(context.Background(), &models.Donation{
			SessionID:   fmt.Sprintf("cs_d%d", i),
			Status:      status,
			AmountCents: 500,
			Currency:    "usd",
			Frequency:   enums.DonationFrequencyOneTime,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, err := svc.ListDonations(context.Background(), ListInput{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, page.Donations, 2)
	require.Equal(t, "cs_d2", page.Donations[0].SessionID)
	require.Equal(t, "one-time", page.Donations[0].Frequency)
	require.Empty(t, page.NextCursor)
}

func TestListRejectsBadQueries(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.ListOrders(context.Background(), ListInput{Status: "shipped"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.ListDonations(context.Background(), ListInput{Cursor: "!!not-a-cursor"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
