package donations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/internal/testutil"
	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	"github.com/Coco120903/BananaMeow-sub000/pkg/pagination"
)

func newPendingDonation(sessionID string, frequency enums.DonationFrequency) *models.Donation {
	return &models.Donation{
		SessionID:    sessionID,
		Status:       enums.DonationStatusPending,
		AmountCents:  1500,
		Currency:     "usd",
		Frequency:    frequency,
		DonationType: "food",
		TargetCat:    "Banana",
	}
}

func TestTransitionCompletesOnceAndStoresSubscription(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPendingDonation("cs_monthly", enums.DonationFrequencyMonthly)))

	complete := Transition{
		SessionID:      "cs_monthly",
		From:           enums.DonationStatusPending,
		To:             enums.DonationStatusCompleted,
		Email:          "fan@example.com",
		SubscriptionID: "sub_123",
	}
	changed, err := repo.Transition(ctx, complete)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.Transition(ctx, complete)
	require.NoError(t, err)
	require.False(t, changed)

	got, err := repo.FindBySessionID(ctx, "cs_monthly")
	require.NoError(t, err)
	require.Equal(t, enums.DonationStatusCompleted, got.Status)
	require.Equal(t, "sub_123", got.SubscriptionID)
	require.Equal(t, "fan@example.com", got.Email)
	require.NotNil(t, got.CompletedAt)
}

func TestExpiredDonationIsNotReactivated(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPendingDonation("cs_expire", enums.DonationFrequencyOneTime)))

	changed, err := repo.Transition(ctx, Transition{SessionID: "cs_expire", From: enums.DonationStatusPending, To: enums.DonationStatusExpired})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.Transition(ctx, Transition{SessionID: "cs_expire", From: enums.DonationStatusPending, To: enums.DonationStatusCompleted})
	require.NoError(t, err)
	require.False(t, changed)

	got, err := repo.FindBySessionID(ctx, "cs_expire")
	require.NoError(t, err)
	require.Equal(t, enums.DonationStatusExpired, got.Status)
	require.Nil(t, got.CompletedAt)
}

func TestFindByPaymentIntentID(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newPendingDonation("cs_pi", enums.DonationFrequencyOneTime)))

	_, err := repo.Transition(ctx, Transition{
		SessionID:       "cs_pi",
		From:            enums.DonationStatusPending,
		To:              enums.DonationStatusCompleted,
		PaymentIntentID: "pi_don",
	})
	require.NoError(t, err)

	got, err := repo.FindByPaymentIntentID(ctx, "pi_don")
	require.NoError(t, err)
	require.Equal(t, "cs_pi", got.SessionID)

	_, err = repo.FindByPaymentIntentID(ctx, "")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestExpirePendingBeforeAndList(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	old := newPendingDonation("cs_old", enums.DonationFrequencyOneTime)
	old.CreatedAt = now.Add(-50 * time.Hour)
	recent := newPendingDonation("cs_recent", enums.DonationFrequencyOneTime)
	recent.CreatedAt = now.Add(-2 * time.Hour)
	for _, d := range []*models.Donation{old, recent} {
		require.NoError(t, repo.Create(ctx, d))
	}

	n, err := repo.ExpirePendingBefore(ctx, now.Add(-48*time.Hour), now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	expired := enums.DonationStatusExpired
	rows, err := repo.List(ctx, ListParams{Status: &expired})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "cs_old", rows[0].SessionID)

	rows, err = repo.List(ctx, ListParams{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "cs_recent", rows[0].SessionID)

	rows, err = repo.List(ctx, ListParams{Limit: 1, Cursor: &pagination.Cursor{CreatedAt: rows[0].CreatedAt, ID: rows[0].ID}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "cs_old", rows[0].SessionID)
}
