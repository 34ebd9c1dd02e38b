package database_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homepro-server/database"
	"homepro-server/database/dbtest"
	"homepro-server/models"
)

func TestActiveSlotIndexRejectsDoubleBooking(t *testing.T) {
	db, err := dbtest.OpenInMemory()
	require.NoError(t, err)

	first := models.Booking{
		UserID: 1, ProviderID: 7, AddressID: 1,
		ServiceDate: "2026-02-01", ServiceTime: "10:00",
		EstimatedHours: 1, TotalAmount: 40, Status: models.BookingStatusPending,
	}
	require.NoError(t, db.Create(&first).Error)

	second := first
	second.ID = 0
	second.UserID = 2
	err = db.Create(&second).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestActiveSlotIndexIgnoresTerminalBookings(t *testing.T) {
	db, err := dbtest.OpenInMemory()
	require.NoError(t, err)

	cancelled := models.Booking{
		UserID: 1, ProviderID: 7, AddressID: 1,
		ServiceDate: "2026-02-01", ServiceTime: "10:00",
		EstimatedHours: 1, TotalAmount: 40, Status: models.BookingStatusCancelled,
	}
	require.NoError(t, db.Create(&cancelled).Error)

	fresh := cancelled
	fresh.ID = 0
	fresh.Status = models.BookingStatusPending
	assert.NoError(t, db.Create(&fresh).Error)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, database.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, database.IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_bookings_active_slot"`)))
}
