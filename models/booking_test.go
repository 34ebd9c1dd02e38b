package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatusPending.IsTerminal())
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusInProgress, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusInProgress, BookingStatusCompleted, true},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestBookingStatusIsValid(t *testing.T) {
	assert.True(t, BookingStatus("in_progress").IsValid())
	assert.False(t, BookingStatus("accepted").IsValid())
	assert.False(t, BookingStatus("").IsValid())
}
