package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/database"
	"homepro-server/metrics"
	"homepro-server/models"
)

const msgReviewExists = "Review already exists for this booking"

// ReviewService handles customer reviews of completed bookings
type ReviewService struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		db:  db,
		log: log.With().Str("component", "reviews").Logger(),
	}
}

// Create stores a review and refreshes the provider's rating aggregates
func (s *ReviewService) Create(ctx context.Context, userID uint, req models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.Validation("Rating must be between 1 and 5")
	}

	db := s.db.WithContext(ctx)

	var booking models.Booking
	if err := db.Where("id = ? AND user_id = ?", req.BookingID, userID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgBookingNotFound)
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperror.Validation("Can only review completed bookings")
	}
	if req.ProviderID != 0 && req.ProviderID != booking.ProviderID {
		return nil, apperror.Validation("Provider does not match this booking")
	}

	var existing int64
	if err := db.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check review: %w", err)
	}
	if existing > 0 {
		return nil, apperror.Validation(msgReviewExists)
	}

	review := models.Review{
		BookingID:  booking.ID,
		UserID:     userID,
		ProviderID: booking.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperror.Validation(msgReviewExists)
			}
			return fmt.Errorf("create review: %w", err)
		}
		return refreshProviderRating(tx, booking.ProviderID)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncReviewCreated()
	s.log.Info().Uint("review_id", review.ID).Uint("provider_id", review.ProviderID).Int("rating", review.Rating).
		Msg("⭐ Review created")
	return &review, nil
}

// ListByProvider returns a provider's reviews, newest first, with the author's name
func (s *ReviewService) ListByProvider(ctx context.Context, providerID uint) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := s.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "full_name")
		}).
		Where("provider_id = ?", providerID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func refreshProviderRating(tx *gorm.DB, providerID uint) error {
	var agg struct {
		Average float64
		Total   int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("provider_id = ?", providerID).
		Scan(&agg).Error; err != nil {
		return fmt.Errorf("aggregate ratings: %w", err)
	}

	return tx.Model(&models.Provider{}).Where("id = ?", providerID).Updates(map[string]interface{}{
		"rating":        math.Round(agg.Average*100) / 100,
		"total_reviews": agg.Total,
	}).Error
}
