package services

import (
	"context"
	"time"

	"homepro-server/models"
)

type BookingEventType string

const (
	BookingEventCreated   BookingEventType = "booking.created"
	BookingEventCancelled BookingEventType = "booking.cancelled"
	BookingEventConfirmed BookingEventType = "booking.confirmed"
)

// BookingEvent describes a booking state change for its owner
type BookingEvent struct {
	Type        BookingEventType     `json:"type"`
	BookingID   uint                 `json:"booking_id"`
	UserID      uint                 `json:"user_id"`
	ProviderID  uint                 `json:"provider_id"`
	Status      models.BookingStatus `json:"status"`
	ServiceDate string               `json:"service_date"`
	ServiceTime string               `json:"service_time"`
	TotalAmount float64              `json:"total_amount"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// NewBookingEvent snapshots a booking into an event
func NewBookingEvent(eventType BookingEventType, b *models.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		ProviderID:  b.ProviderID,
		Status:      b.Status,
		ServiceDate: b.ServiceDate,
		ServiceTime: b.ServiceTime,
		TotalAmount: b.TotalAmount,
		OccurredAt:  at,
	}
}

// Notifier delivers booking events. Implementations must not block the caller for long
// and never fail the operation that produced the event.
type Notifier interface {
	NotifyBooking(ctx context.Context, event BookingEvent)
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) NotifyBooking(context.Context, BookingEvent) {}

// MultiNotifier fans an event out to every notifier in order
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyBooking(ctx context.Context, event BookingEvent) {
	for _, n := range m {
		if n != nil {
			n.NotifyBooking(ctx, event)
		}
	}
}
