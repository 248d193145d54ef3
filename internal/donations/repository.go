package donations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	"github.com/Coco120903/BananaMeow-sub000/pkg/pagination"
)

// Transition is a conditional donation status change keyed by session id.
type Transition struct {
	SessionID       string
	From            enums.DonationStatus
	To              enums.DonationStatus
	Email           string
	PaymentIntentID string
	SubscriptionID  string
	At              time.Time
}

// ListParams filters the admin donation listing.
type ListParams struct {
	Status *enums.DonationStatus
	Limit  int
	Cursor *pagination.Cursor
}

// Repository is the donation half of the ledger store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Donation, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Donation, error)
	Transition(ctx context.Context, t Transition) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
	List(ctx context.Context, params ListParams) ([]models.Donation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Donation, error) {
	if paymentIntentID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("payment_intent_id = ?", paymentIntentID).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

// Transition applies t with one conditional UPDATE and reports whether a row changed.
func (r *repository) Transition(ctx context.Context, t Transition) (bool, error) {
	if t.SessionID == "" {
		return false, nil
	}
	at := t.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	updates := map[string]any{
		"status":     t.To,
		"updated_at": at,
	}
	switch t.To {
	case enums.DonationStatusCompleted:
		updates["completed_at"] = at
	case enums.DonationStatusExpired:
		updates["expired_at"] = at
	case enums.DonationStatusRefunded:
		updates["refunded_at"] = at
	default:
		return false, fmt.Errorf("unsupported donation transition target %q", t.To)
	}
	if t.Email != "" {
		updates["email"] = gorm.Expr("CASE WHEN email IS NULL OR email = '' THEN ? ELSE email END", t.Email)
	}
	if t.PaymentIntentID != "" {
		updates["payment_intent_id"] = t.PaymentIntentID
	}
	if t.SubscriptionID != "" {
		updates["subscription_id"] = t.SubscriptionID
	}

	res := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("session_id = ? AND status = ?", t.SessionID, t.From).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpirePendingBefore expires every donation still pending that was created before cutoff.
func (r *repository) ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("status = ? AND created_at < ?", enums.DonationStatusPending, cutoff).
		Updates(map[string]any{
			"status":     enums.DonationStatusExpired,
			"expired_at": now,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// List returns up to params.Limit+1 donations newest first.
func (r *repository) List(ctx context.Context, params ListParams) ([]models.Donation, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	q := r.db.WithContext(ctx)
	if params.Status != nil {
		q = q.Where("status = ?", *params.Status)
	}
	if c := params.Cursor; c != nil {
		q = q.Where("((created_at < ?) OR (created_at = ? AND id < ?))", c.CreatedAt, c.CreatedAt, c.ID)
	}

	var rows []models.Donation
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
