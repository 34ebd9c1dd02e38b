package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/database"
	"homepro-server/metrics"
	"homepro-server/models"
	"homepro-server/utils"
)

const (
	MinEstimatedHours = 0.5
	MaxEstimatedHours = 8.0
)

const (
	msgSlotTaken        = "This time slot is already booked"
	msgBookingNotFound  = "Booking not found"
	msgAlreadyCancelled = "Booking is already cancelled"
	msgCancelCompleted  = "Cannot cancel completed booking"
	msgAlreadyConfirmed = "Booking is already confirmed"
)

// CalculateBookingAmount returns hourlyRate * hours rounded to cents
func CalculateBookingAmount(hourlyRate, hours float64) float64 {
	return math.Round(hourlyRate*hours*100) / 100
}

// ValidateEstimatedHours checks the [0.5, 8] bound
func ValidateEstimatedHours(hours float64) error {
	if hours < MinEstimatedHours || hours > MaxEstimatedHours {
		return apperror.Validation(fmt.Sprintf("Estimated hours must be between %g and %g", MinEstimatedHours, MaxEstimatedHours))
	}
	return nil
}

// BookingService owns the booking lifecycle: creation, cancellation and payment confirmation
type BookingService struct {
	db       *gorm.DB
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(db *gorm.DB, notifier Notifier, log zerolog.Logger) *BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &BookingService{
		db:       db,
		notifier: notifier,
		log:      log.With().Str("component", "bookings").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create books a provider slot for the user
func (s *BookingService) Create(ctx context.Context, userID uint, req models.CreateBookingRequest) (*models.Booking, error) {
	if req.ProviderID == 0 || req.AddressID == 0 || req.ServiceDate == "" || req.ServiceTime == "" || req.EstimatedHours == 0 {
		metrics.IncBookingCreated("rejected")
		return nil, apperror.Validation("Please provide all required fields")
	}
	serviceDate, err := utils.NormalizeDate(req.ServiceDate)
	if err != nil {
		metrics.IncBookingCreated("rejected")
		return nil, apperror.Validation("Service date must be in YYYY-MM-DD format")
	}
	serviceTime, err := utils.NormalizeSlotTime(req.ServiceTime)
	if err != nil {
		metrics.IncBookingCreated("rejected")
		return nil, apperror.Validation("Service time must be on the hour in HH:00 format")
	}
	if err := ValidateEstimatedHours(req.EstimatedHours); err != nil {
		metrics.IncBookingCreated("rejected")
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var provider models.Provider
	if err := db.First(&provider, req.ProviderID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load provider: %w", err)
		}
		metrics.IncBookingCreated("rejected")
		return nil, apperror.NotFound("Provider not found or not active")
	}
	if !provider.IsActive {
		metrics.IncBookingCreated("rejected")
		return nil, apperror.NotFound("Provider not found or not active")
	}

	var address models.Address
	if err := db.Where("id = ? AND user_id = ?", req.AddressID, userID).First(&address).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load address: %w", err)
		}
		metrics.IncBookingCreated("rejected")
		return nil, apperror.Forbidden("Address not found or does not belong to you")
	}

	var taken int64
	if err := db.Model(&models.Booking{}).
		Where("provider_id = ? AND service_date = ? AND service_time = ? AND status IN ?",
			provider.ID, serviceDate, serviceTime, models.ActiveBookingStatuses).
		Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken > 0 {
		metrics.IncBookingCreated("conflict")
		return nil, apperror.Conflict(msgSlotTaken)
	}

	booking := models.Booking{
		UserID:         userID,
		ProviderID:     provider.ID,
		AddressID:      address.ID,
		ServiceDate:    serviceDate,
		ServiceTime:    serviceTime,
		EstimatedHours: req.EstimatedHours,
		TotalAmount:    CalculateBookingAmount(provider.HourlyRate, req.EstimatedHours),
		Status:         models.BookingStatusPending,
		Notes:          req.Notes,
	}

	// the partial unique index settles races the count above cannot see
	if err := db.Create(&booking).Error; err != nil {
		if database.IsUniqueViolation(err) {
			metrics.IncBookingCreated("conflict")
			s.log.Warn().Uint("provider_id", provider.ID).Str("date", serviceDate).Str("time", serviceTime).
				Msg("⚠️ Concurrent booking lost the slot")
			return nil, apperror.Conflict(msgSlotTaken)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated("created")
	s.log.Info().Uint("booking_id", booking.ID).Uint("user_id", userID).Msg("✅ Booking created")
	s.notifier.NotifyBooking(ctx, NewBookingEvent(BookingEventCreated, &booking, s.now()))

	return s.loadForOwner(ctx, userID, booking.ID, "Provider", "Address")
}

// List returns the user's bookings, newest first, optionally filtered by status
func (s *BookingService) List(ctx context.Context, userID uint, status string) ([]models.Booking, error) {
	query := s.db.WithContext(ctx).
		Preload("Provider").
		Preload("Address").
		Where("user_id = ?", userID)

	if status != "" {
		if !models.BookingStatus(status).IsValid() {
			return nil, apperror.Validation("Invalid booking status")
		}
		query = query.Where("status = ?", status)
	}

	bookings := make([]models.Booking, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Get returns one of the user's bookings with provider, address and payment
func (s *BookingService) Get(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	return s.loadForOwner(ctx, userID, bookingID, "Provider", "Address", "Payment")
}

// Cancel moves a non-terminal booking to cancelled and records the reason
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uint, reason *string) (*models.Booking, error) {
	booking, err := s.loadForOwner(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if err := cancellable(booking.Status); err != nil {
		return nil, err
	}

	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", booking.ID, models.ActiveBookingStatuses).
		Updates(map[string]interface{}{
			"status":              models.BookingStatusCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("cancel booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// lost a race with another transition; report what it became
		current, err := s.loadForOwner(ctx, userID, bookingID)
		if err != nil {
			return nil, err
		}
		if err := cancellable(current.Status); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("Booking changed while cancelling, please retry")
	}

	metrics.IncBookingCancelled()
	s.log.Info().Uint("booking_id", booking.ID).Msg("🛑 Booking cancelled")

	updated, err := s.loadForOwner(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyBooking(ctx, NewBookingEvent(BookingEventCancelled, updated, now))
	return updated, nil
}

func cancellable(status models.BookingStatus) error {
	if status.IsTerminal() {
		if status == models.BookingStatusCancelled {
			return apperror.Validation(msgAlreadyCancelled)
		}
		return apperror.Validation(msgCancelCompleted)
	}
	if !status.CanTransitionTo(models.BookingStatusCancelled) {
		return apperror.Validation(fmt.Sprintf("Cannot cancel %s booking", status))
	}
	return nil
}

func confirmable(status models.BookingStatus) error {
	if status == models.BookingStatusConfirmed {
		return apperror.Conflict(msgAlreadyConfirmed)
	}
	if !status.CanTransitionTo(models.BookingStatusConfirmed) {
		return apperror.Validation("Only pending bookings can be confirmed")
	}
	return nil
}

// ConfirmAfterPayment confirms a pending booking once its payment intent has settled.
// The status change and the payment row are written in one transaction.
func (s *BookingService) ConfirmAfterPayment(ctx context.Context, userID, bookingID uint, intent *PaymentIntent) (*models.Booking, error) {
	if intent == nil || intent.Status != PaymentIntentSucceeded {
		metrics.IncPaymentConfirmed("not_settled")
		return nil, apperror.Validation("Payment not completed")
	}

	booking, err := s.loadForOwner(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if ref, ok := intent.Metadata["booking_id"]; ok && ref != strconv.FormatUint(uint64(booking.ID), 10) {
		metrics.IncPaymentConfirmed("mismatch")
		return nil, apperror.Validation("Payment does not belong to this booking")
	}
	if intent.Amount != AmountInCents(booking.TotalAmount) {
		metrics.IncPaymentConfirmed("mismatch")
		return nil, apperror.Validation("Payment amount does not match booking total")
	}

	if err := confirmable(booking.Status); err != nil {
		return nil, err
	}

	payment := models.Payment{
		BookingID:         booking.ID,
		ExternalReference: intent.ID,
		Amount:            float64(intent.Amount) / 100,
		Currency:          intent.Currency,
		Status:            models.PaymentStatusCompleted,
		PaymentMethod:     intent.PaymentMethod,
		Metadata:          paymentMetadata(intent),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingStatusPending).
			Update("status", models.BookingStatusConfirmed)
		if result.Error != nil {
			return fmt.Errorf("confirm booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.Conflict(msgAlreadyConfirmed)
		}

		if err := tx.Create(&payment).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperror.Conflict("Payment already recorded")
			}
			return fmt.Errorf("record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.IncPaymentConfirmed("failed")
		return nil, err
	}

	metrics.IncPaymentConfirmed("confirmed")
	s.log.Info().Uint("booking_id", booking.ID).Str("payment_intent", intent.ID).Msg("💳 Payment confirmed")

	updated, err := s.loadForOwner(ctx, userID, bookingID, "Provider", "Address", "Payment")
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyBooking(ctx, NewBookingEvent(BookingEventConfirmed, updated, s.now()))
	return updated, nil
}

func paymentMetadata(intent *PaymentIntent) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	for k, v := range intent.Metadata {
		meta[k] = v
	}
	return meta
}

func (s *BookingService) loadForOwner(ctx context.Context, userID, bookingID uint, preloads ...string) (*models.Booking, error) {
	query := s.db.WithContext(ctx)
	for _, p := range preloads {
		query = query.Preload(p)
	}

	var booking models.Booking
	if err := query.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgBookingNotFound)
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return &booking, nil
}
