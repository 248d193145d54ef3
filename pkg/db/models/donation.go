package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Coco120903/BananaMeow-sub000/pkg/enums"
)

// Donation is a one-time or monthly gift tracked through checkout.
type Donation struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	SessionID       string                  `gorm:"column:session_id;not null;uniqueIndex"`
	Status          enums.DonationStatus    `gorm:"column:status;not null"`
	AmountCents     int64                   `gorm:"column:amount_cents;not null"`
	Currency        string                  `gorm:"column:currency;not null"`
	Frequency       enums.DonationFrequency `gorm:"column:frequency;not null"`
	DonationType    string                  `gorm:"column:donation_type"`
	TargetCat       string                  `gorm:"column:target_cat"`
	Email           string                  `gorm:"column:email"`
	PaymentIntentID string                  `gorm:"column:payment_intent_id"`
	SubscriptionID  string                  `gorm:"column:subscription_id"`
	CompletedAt     *time.Time              `gorm:"column:completed_at"`
	ExpiredAt       *time.Time              `gorm:"column:expired_at"`
	RefundedAt      *time.Time              `gorm:"column:refunded_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
