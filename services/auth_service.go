package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/database"
	"homepro-server/models"
	"homepro-server/utils"
)

const msgEmailTaken = "User with this email already exists"

// AuthResult is returned by signup, login and federated sign-in
type AuthResult struct {
	User *models.User `json:"user"`
	*TokenPair
	Token string `json:"token"`
}

// AuthService handles account creation and sessions
type AuthService struct {
	db        *gorm.DB
	jwt       *JWTService
	federated IdentityResolver
	log       zerolog.Logger
}

// NewAuthService creates a new auth service. federated may be nil when Google sign-in is off.
func NewAuthService(db *gorm.DB, jwt *JWTService, federated IdentityResolver, log zerolog.Logger) *AuthService {
	return &AuthService{
		db:        db,
		jwt:       jwt,
		federated: federated,
		log:       log.With().Str("component", "auth").Logger(),
	}
}

// Signup registers a local account
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest, client ClientInfo) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, apperror.Conflict(msgEmailTaken)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        utils.CleanPhoneNumber(req.Phone),
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Uint("user_id", user.ID).Msg("✅ User registered")
	return s.issue(ctx, &user, client)
}

// Login checks email and password
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, client ClientInfo) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !user.HasPassword() || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn().Str("email", email).Msg("🚫 Failed login attempt")
		return nil, apperror.Unauthorized("Invalid email or password")
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("User account is deactivated")
	}

	return s.issue(ctx, &user, client)
}

// GoogleSignIn verifies a Google ID token, provisions the user if needed and opens a session
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string, client ClientInfo) (*AuthResult, error) {
	if s.federated == nil {
		return nil, apperror.Validation("Google sign-in is not enabled")
	}

	user, err := s.federated.Resolve(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotRecognized) {
			return nil, apperror.Unauthorized("Invalid Google token")
		}
		return nil, err
	}
	return s.issue(ctx, user, client)
}

// Refresh exchanges a refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	pair, err := s.jwt.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) || errors.Is(err, ErrRefreshTokenInvalid) {
			return nil, apperror.Unauthorized("Invalid or expired refresh token")
		}
		return nil, err
	}
	return pair, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.jwt.RevokeRefreshToken(ctx, refreshToken); err != nil && !errors.Is(err, ErrRefreshTokenNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User, client ClientInfo) (*AuthResult, error) {
	pair, err := s.jwt.GenerateTokenPair(ctx, user.ID, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, TokenPair: pair, Token: pair.AccessToken}, nil
}
