package products

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Coco120903/BananaMeow-sub000/pkg/db/models"
)

// ErrNotFound is returned when a stock adjustment targets a missing product.
var ErrNotFound = errors.New("product not found")

// Repository is the inventory store used by checkout and reconciliation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx, now: r.now}
}

// FindByIDs loads the requested products keyed by id. Missing ids are absent
// from the result.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	found := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		found[row.ID] = row
	}
	return found, nil
}

type stockRow struct {
	Stock int
}

// AdjustStock atomically adds delta to the product stock and returns the new
// value. The read-back comes from the same statement.
func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var rows []stockRow
	err := r.db.WithContext(ctx).
		Raw(`UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ? RETURNING stock`, delta, r.now(), id).
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrNotFound
	}
	return rows[0].Stock, nil
}
