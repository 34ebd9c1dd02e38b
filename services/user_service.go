package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/models"
	"homepro-server/utils"
)

const msgAddressNotFound = "Address not found"

// UserService manages profiles and addresses
type UserService struct {
	db       *gorm.DB
	uploader ImageUploader
	log      zerolog.Logger
}

// NewUserService creates a new user service. uploader may be nil when uploads are not configured.
func NewUserService(db *gorm.DB, uploader ImageUploader, log zerolog.Logger) *UserService {
	return &UserService{
		db:       db,
		uploader: uploader,
		log:      log.With().Str("component", "users").Logger(),
	}
}

// GetProfile returns the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes the name and/or phone
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req models.ProfileUpdateRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		updates["phone"] = utils.CleanPhoneNumber(*req.Phone)
	}
	if len(updates) == 0 {
		return nil, apperror.Validation("Please provide fields to update")
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores the image with the uploader and saves its URL on the profile
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, apperror.Upstream("Avatar uploads are not configured", nil)
	}

	url, err := s.uploader.UploadImage(ctx, file, "homepro/avatars", fmt.Sprintf("user-%d", userID))
	if err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Msg("❌ Avatar upload failed")
		return nil, apperror.Upstream("Failed to upload avatar", err)
	}

	s.log.Info().Uint("user_id", userID).Msg("📸 Avatar uploaded")
	return s.SetAvatar(ctx, userID, url)
}

// SetAvatar stores the uploaded avatar URL
func (s *UserService) SetAvatar(ctx context.Context, userID uint, url string) (*models.User, error) {
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url).Error; err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// ListAddresses returns the user's addresses, primary first
func (s *UserService) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_primary DESC, id ASC").
		Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress creates an address; a primary address demotes the others
func (s *UserService) AddAddress(ctx context.Context, userID uint, req models.AddressRequest) (*models.Address, error) {
	if blank(req.AddressLine1) || blank(req.City) || blank(req.State) || blank(req.ZipCode) {
		return nil, apperror.Validation("Please provide all required address fields")
	}

	address := models.Address{
		UserID:       userID,
		AddressLine1: strings.TrimSpace(*req.AddressLine1),
		AddressLine2: req.AddressLine2,
		City:         strings.TrimSpace(*req.City),
		State:        strings.TrimSpace(*req.State),
		ZipCode:      strings.TrimSpace(*req.ZipCode),
		IsPrimary:    req.IsPrimary != nil && *req.IsPrimary,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsPrimary {
			if err := demotePrimary(tx, userID, 0); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return &address, nil
}

// UpdateAddress applies the provided fields to one of the user's addresses
func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uint, req models.AddressRequest) (*models.Address, error) {
	address, err := s.findAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	setIfPresent(updates, "address_line1", req.AddressLine1)
	setIfPresent(updates, "city", req.City)
	setIfPresent(updates, "state", req.State)
	setIfPresent(updates, "zip_code", req.ZipCode)
	if req.AddressLine2 != nil {
		updates["address_line2"] = req.AddressLine2
	}
	if req.IsPrimary != nil {
		updates["is_primary"] = *req.IsPrimary
	}
	if len(updates) == 0 {
		return address, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsPrimary != nil && *req.IsPrimary {
			if err := demotePrimary(tx, userID, address.ID); err != nil {
				return err
			}
		}
		return tx.Model(&models.Address{}).Where("id = ?", address.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return s.findAddress(ctx, userID, addressID)
}

// DeleteAddress removes an address that no booking refers to
func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	address, err := s.findAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	var used int64
	if err := db.Model(&models.Booking{}).Where("address_id = ?", address.ID).Count(&used).Error; err != nil {
		return fmt.Errorf("check address usage: %w", err)
	}
	if used > 0 {
		return apperror.Conflict("Address is used by existing bookings")
	}

	if err := db.Delete(&models.Address{}, address.ID).Error; err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

func (s *UserService) findAddress(ctx context.Context, userID, addressID uint) (*models.Address, error) {
	var address models.Address
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgAddressNotFound)
		}
		return nil, fmt.Errorf("load address: %w", err)
	}
	return &address, nil
}

func demotePrimary(tx *gorm.DB, userID, keepID uint) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ? AND is_primary = ?", userID, keepID, true).
		Update("is_primary", false).Error
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

func setIfPresent(updates map[string]interface{}, column string, v *string) {
	if !blank(v) {
		updates[column] = strings.TrimSpace(*v)
	}
}
