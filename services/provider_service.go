package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/models"
)

// ProviderService serves the public catalogue
type ProviderService struct {
	db *gorm.DB
}

// NewProviderService creates a new provider service
func NewProviderService(db *gorm.DB) *ProviderService {
	return &ProviderService{db: db}
}

// ListCategories returns active categories in display order
func (s *ProviderService) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	categories := make([]models.ServiceCategory, 0)
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).
		Order("display_order, id").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListProviders returns active providers, best rated first. categoryID 0 means all.
func (s *ProviderService) ListProviders(ctx context.Context, categoryID uint) ([]models.Provider, error) {
	query := s.db.WithContext(ctx).Preload("Category").Where("is_active = ?", true)
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	providers := make([]models.Provider, 0)
	if err := query.Order("rating DESC, id").Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return providers, nil
}

// GetProvider returns an active provider with category and weekly availability
func (s *ProviderService) GetProvider(ctx context.Context, id uint) (*models.Provider, error) {
	var provider models.Provider
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Availability", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week, start_time")
		}).
		Where("id = ? AND is_active = ?", id, true).
		First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Provider not found")
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}
	return &provider, nil
}
