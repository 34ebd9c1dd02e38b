package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that still occupy a provider's slot.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
}

// IsValid checks if the status is one of the known values
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo checks the booking state machine
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a reservation of one provider slot. ServiceDate is "YYYY-MM-DD" and
// ServiceTime is an hour-aligned "HH:00".
type Booking struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	UserID             uint          `json:"user_id" gorm:"not null;index"`
	ProviderID         uint          `json:"provider_id" gorm:"not null;index"`
	AddressID          uint          `json:"address_id" gorm:"not null"`
	ServiceDate        string        `json:"service_date" gorm:"type:varchar(10);not null"`
	ServiceTime        string        `json:"service_time" gorm:"type:varchar(5);not null"`
	EstimatedHours     float64       `json:"estimated_hours" gorm:"type:decimal(4,2);not null;check:estimated_hours >= 0.5 AND estimated_hours <= 8"`
	TotalAmount        float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status             BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index;check:status IN ('pending','confirmed','in_progress','completed','cancelled')"`
	Notes              *string       `json:"notes" gorm:"size:1000"`
	CancellationReason *string       `json:"cancellation_reason" gorm:"size:1000"`
	CancelledAt        *time.Time    `json:"cancelled_at"`
	CreatedAt          time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time     `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Provider *Provider `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Address  *Address  `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	Payment  *Payment  `json:"payment,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	ProviderID     uint    `json:"provider_id"`
	AddressID      uint    `json:"address_id"`
	ServiceDate    string  `json:"service_date"`
	ServiceTime    string  `json:"service_time"`
	EstimatedHours float64 `json:"estimated_hours"`
	Notes          *string `json:"notes" binding:"omitempty,max=1000"`
}

// CancelBookingRequest is the body of PUT /bookings/:id/cancel
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellation_reason" binding:"omitempty,max=1000"`
}
