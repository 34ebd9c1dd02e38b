package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records a settled external charge. One per booking.
type Payment struct {
	ID                uint              `json:"id" gorm:"primaryKey"`
	BookingID         uint              `json:"booking_id" gorm:"not null;uniqueIndex"`
	ExternalReference string            `json:"external_payment_reference" gorm:"size:255;not null;uniqueIndex"`
	Amount            float64           `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency          string            `json:"currency" gorm:"size:3;not null;default:'usd'"`
	Status            PaymentStatus     `json:"status" gorm:"type:varchar(20);not null"`
	PaymentMethod     string            `json:"payment_method" gorm:"size:50"`
	Metadata          datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// CreatePaymentIntentRequest is the body of POST /payments/create-payment-intent
type CreatePaymentIntentRequest struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

// ConfirmPaymentRequest is the body of POST /payments/confirm
type ConfirmPaymentRequest struct {
	BookingID       uint   `json:"booking_id" binding:"required"`
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}
