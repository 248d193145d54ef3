package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
)

// Order is a cart checkout tracked from session creation until payment settles.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SessionID       string            `gorm:"column:session_id;not null;uniqueIndex"`
	Status          enums.OrderStatus `gorm:"column:status;not null"`
	TotalCents      int64             `gorm:"column:total_cents;not null"`
	Currency        string            `gorm:"column:currency;not null"`
	Email           string            `gorm:"column:email"`
	PaymentIntentID string            `gorm:"column:payment_intent_id"`
	Items           []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt          *time.Time        `gorm:"column:paid_at"`
	CancelledAt     *time.Time        `gorm:"column:cancelled_at"`
	RefundedAt      *time.Time        `gorm:"column:refunded_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
