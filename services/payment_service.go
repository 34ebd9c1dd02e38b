package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/models"
)

// PaymentIntentSucceeded is the only intent status that settles a booking
const PaymentIntentSucceeded = "succeeded"

// PaymentIntent is the gateway-neutral view of an external charge. Amount is in cents.
type PaymentIntent struct {
	ID            string
	ClientSecret  string
	Amount        int64
	Currency      string
	Status        string
	PaymentMethod string
	Metadata      map[string]string
}

// CreateIntentParams describes a charge to open at the gateway
type CreateIntentParams struct {
	AmountCents    int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentGateway is the external payment-intent API
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// PaymentIntentResult is returned to the client to complete the charge
type PaymentIntentResult struct {
	ClientSecret    string  `json:"client_secret"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

// AmountInCents converts a decimal amount to the gateway's smallest unit
func AmountInCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// PaymentService bridges bookings and the payment gateway
type PaymentService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	bookings *BookingService
	currency string
	log      zerolog.Logger
}

// NewPaymentService creates a new payment service. gateway may be nil when payments are not configured.
func NewPaymentService(db *gorm.DB, gateway PaymentGateway, bookings *BookingService, currency string, log zerolog.Logger) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		db:       db,
		gateway:  gateway,
		bookings: bookings,
		currency: currency,
		log:      log.With().Str("component", "payments").Logger(),
	}
}

// CreateIntent opens a payment intent for a pending booking owned by the user
func (s *PaymentService) CreateIntent(ctx context.Context, userID, bookingID uint) (*PaymentIntentResult, error) {
	if s.gateway == nil {
		return nil, apperror.Upstream("Payments are not configured", nil)
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Provider").
		Where("id = ? AND user_id = ?", bookingID, userID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgBookingNotFound)
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.Status != models.BookingStatusPending {
		return nil, apperror.Validation("Only pending bookings can be paid")
	}

	providerName := ""
	if booking.Provider != nil {
		providerName = booking.Provider.BusinessName
	}

	cents := AmountInCents(booking.TotalAmount)
	intent, err := s.gateway.CreatePaymentIntent(ctx, CreateIntentParams{
		AmountCents: cents,
		Currency:    s.currency,
		Metadata: map[string]string{
			"booking_id":    strconv.FormatUint(uint64(booking.ID), 10),
			"user_id":       strconv.FormatUint(uint64(userID), 10),
			"provider_name": providerName,
		},
		IdempotencyKey: fmt.Sprintf("booking-%d-%d", booking.ID, cents),
	})
	if err != nil {
		s.log.Error().Err(err).Uint("booking_id", booking.ID).Msg("❌ Failed to create payment intent")
		return nil, apperror.Upstream("Failed to create payment intent", err)
	}

	s.log.Info().Uint("booking_id", booking.ID).Str("payment_intent", intent.ID).Int64("amount", cents).
		Msg("💳 Payment intent created")

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          booking.TotalAmount,
		Currency:        s.currency,
	}, nil
}

// Confirm verifies the intent with the gateway and confirms the booking
func (s *PaymentService) Confirm(ctx context.Context, userID uint, req models.ConfirmPaymentRequest) (*models.Booking, error) {
	if s.gateway == nil {
		return nil, apperror.Upstream("Payments are not configured", nil)
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		s.log.Error().Err(err).Str("payment_intent", req.PaymentIntentID).Msg("❌ Failed to retrieve payment intent")
		return nil, apperror.Upstream("Failed to verify payment", err)
	}

	return s.bookings.ConfirmAfterPayment(ctx, userID, req.BookingID, intent)
}
