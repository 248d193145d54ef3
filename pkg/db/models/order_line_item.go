package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem is the immutable snapshot of one purchased cart line.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	Position       int        `gorm:"column:position;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// LineTotalCents is the unit price times quantity.
func (i OrderLineItem) LineTotalCents() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}
