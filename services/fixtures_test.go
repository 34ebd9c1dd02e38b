package services

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/database/dbtest"
	"homepro-server/models"
)

// 2026-02-01 is a Sunday
const (
	sunday = "2026-02-01"
	monday = "2026-02-02"
)

type fixture struct {
	db       *gorm.DB
	user     models.User
	other    models.User
	address  models.Address
	provider models.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := dbtest.OpenInMemory()
	require.NoError(t, err)

	f := &fixture{db: db}

	f.user = models.User{Email: "jane@example.com", FullName: "Jane Doe", Phone: "+15551234567", IsActive: true}
	require.NoError(t, db.Create(&f.user).Error)
	f.other = models.User{Email: "omar@example.com", FullName: "Omar Ali", Phone: "+15557654321", IsActive: true}
	require.NoError(t, db.Create(&f.other).Error)

	f.address = models.Address{UserID: f.user.ID, AddressLine1: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"}
	require.NoError(t, db.Create(&f.address).Error)

	category := models.ServiceCategory{Name: "Plumbing", DisplayOrder: 1, IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	f.provider = models.Provider{
		CategoryID:   category.ID,
		BusinessName: "Ace Plumbing",
		HourlyRate:   45.5,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&f.provider).Error)

	window := models.ProviderAvailability{
		ProviderID: f.provider.ID,
		DayOfWeek:  0,
		StartTime:  "09:00:00",
		EndTime:    "17:00:00",
		IsActive:   true,
	}
	require.NoError(t, db.Create(&window).Error)

	return f
}

func (f *fixture) bookingService() *BookingService {
	return NewBookingService(f.db, nil, zerolog.Nop())
}

func (f *fixture) bookingRequest(date, clock string, hours float64) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		ProviderID:     f.provider.ID,
		AddressID:      f.address.ID,
		ServiceDate:    date,
		ServiceTime:    clock,
		EstimatedHours: hours,
	}
}

// insertBooking writes a booking row directly in the given status
func (f *fixture) insertBooking(t *testing.T, date, clock string, status models.BookingStatus) models.Booking {
	t.Helper()
	b := models.Booking{
		UserID:         f.user.ID,
		ProviderID:     f.provider.ID,
		AddressID:      f.address.ID,
		ServiceDate:    date,
		ServiceTime:    clock,
		EstimatedHours: 2,
		TotalAmount:    91,
		Status:         status,
	}
	require.NoError(t, f.db.Create(&b).Error)
	return b
}

func (f *fixture) setBookingStatus(t *testing.T, id uint, status models.BookingStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", id).Update("status", status).Error)
}

func requireKind(t *testing.T, err error, kind apperror.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind)
	if message != "" {
		require.Equal(t, message, appErr.Message)
	}
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

func (m *mockGateway) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

type recordingNotifier struct {
	events []BookingEvent
}

func (r *recordingNotifier) NotifyBooking(_ context.Context, event BookingEvent) {
	r.events = append(r.events, event)
}

type fakeUploader struct {
	folder, publicID string
	err              error
}

func (u *fakeUploader) UploadImage(_ context.Context, file io.Reader, folder, publicID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	_, _ = io.ReadAll(file)
	u.folder, u.publicID = folder, publicID
	return "https://res.cloudinary.com/demo/image/upload/" + folder + "/" + publicID + ".png", nil
}
