package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
	"github.com/Coco120903/BananaMeow-sub000/pkg/pagination"
)

// Transition describes a conditional status change keyed by session id.
// It applies only while the stored status still equals From.
type Transition struct {
	SessionID       string
	From            enums.OrderStatus
	To              enums.OrderStatus
	Email           string
	PaymentIntentID string
	At              time.Time
}

// ListParams filters the admin order listing.
type ListParams struct {
	Status *enums.OrderStatus
	Limit  int
	Cursor *pagination.Cursor
}

// Repository is the order half of the ledger store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	Transition(ctx context.Context, t Transition) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
	List(ctx context.Context, params ListParams) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists a pending order together with its line item snapshot.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return r.findOne(ctx, "session_id = ?", sessionID)
}

func (r *repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	if paymentIntentID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.findOne(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where(query, arg).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Transition applies t with a single conditional UPDATE and reports whether a
// row changed. Concurrent callers racing on the same session see exactly one
// true.
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
	case enums.OrderStatusPaid:
		updates["paid_at"] = at
	case enums.OrderStatusCancelled:
		updates["cancelled_at"] = at
	case enums.OrderStatusRefunded:
		updates["refunded_at"] = at
	default:
		return false, fmt.Errorf("unsupported order transition target %q", t.To)
	}
	if t.Email != "" {
		updates["email"] = gorm.Expr("CASE WHEN email IS NULL OR email = '' THEN ? ELSE email END", t.Email)
	}
	if t.PaymentIntentID != "" {
		updates["payment_intent_id"] = t.PaymentIntentID
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("session_id = ? AND status = ?", t.SessionID, t.From).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpirePendingBefore cancels every order still pending that was created before cutoff.
func (r *repository) ExpirePendingBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Updates(map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

// List returns up to params.Limit+1 orders newest first so callers can detect
// another page.
func (r *repository) List(ctx context.Context, params ListParams) ([]models.Order, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if params.Status != nil {
		q = q.Where("status = ?", *params.Status)
	}
	if c := params.Cursor; c != nil {
		q = q.Where("((created_at < ?) OR (created_at = ? AND id < ?))", c.CreatedAt, c.CreatedAt, c.ID)
	}

	var rows []models.Order
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// IsNotFound reports whether err is the ledger's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
