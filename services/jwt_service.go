package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homepro-server/config"
	"homepro-server/models"
	"homepro-server/utils"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenInvalid  = errors.New("refresh token is invalid or expired")
)

// Claims represents the JWT claims
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// ClientInfo is recorded with each refresh token
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// JWTService handles JWT token operations
type JWTService struct {
	db  *gorm.DB
	cfg config.JWTConfig
	log zerolog.Logger
	now func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(db *gorm.DB, cfg config.JWTConfig, log zerolog.Logger) *JWTService {
	return &JWTService{
		db:  db,
		cfg: cfg,
		log: log.With().Str("component", "jwt").Logger(),
		now: time.Now,
	}
}

// GenerateTokenPair generates both access and refresh tokens
func (js *JWTService) GenerateTokenPair(ctx context.Context, userID uint, client ClientInfo) (*TokenPair, error) {
	accessToken, expiresIn, err := js.GenerateAccessToken(userID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := js.generateRefreshToken(ctx, userID, client)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

// GenerateAccessToken signs a short-lived HS256 access token
func (js *JWTService) GenerateAccessToken(userID uint) (string, int64, error) {
	now := js.now()
	ttl := time.Duration(js.cfg.ExpiryHours) * time.Hour

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    js.cfg.Issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(js.cfg.Secret))
	if err != nil {
		return "", 0, fmt.Errorf("sign access token: %w", err)
	}

	return tokenString, int64(ttl.Seconds()), nil
}

// generateRefreshToken stores a random opaque refresh token
func (js *JWTService) generateRefreshToken(ctx context.Context, userID uint, client ClientInfo) (string, error) {
	tokenString, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", err
	}

	refreshToken := &models.RefreshToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: js.now().Add(time.Duration(js.cfg.RefreshExpiryDays) * 24 * time.Hour),
		UserAgent: truncate(client.UserAgent, 500),
		IPAddress: truncate(client.IPAddress, 45),
	}

	if err := js.db.WithContext(ctx).Create(refreshToken).Error; err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	js.log.Debug().Uint("user_id", userID).Msg("✅ Refresh token generated")
	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns its user id
func (js *JWTService) ValidateAccessToken(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(js.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(js.cfg.Issuer),
	)
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, errors.New("invalid token claims")
	}

	return claims.UserID, nil
}

// ValidateRefreshToken returns the stored token if it is neither revoked nor expired
func (js *JWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	if err := js.db.WithContext(ctx).Where("token = ?", tokenString).First(&refreshToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	if !refreshToken.IsValid(js.now()) {
		return nil, ErrRefreshTokenInvalid
	}

	return &refreshToken, nil
}

// RefreshAccessToken issues a new access token and keeps the same refresh token
func (js *JWTService) RefreshAccessToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	refreshToken, err := js.ValidateRefreshToken(ctx, refreshTokenString)
	if err != nil {
		return nil, err
	}

	accessToken, expiresIn, err := js.GenerateAccessToken(refreshToken.UserID)
	if err != nil {
		return nil, err
	}

	// last-used marker
	js.db.WithContext(ctx).Model(refreshToken).Update("updated_at", js.now())

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
	}, nil
}

// RevokeRefreshToken revokes a refresh token
func (js *JWTService) RevokeRefreshToken(ctx context.Context, tokenString string) error {
	result := js.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokenString).
		Update("is_revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (js *JWTService) RevokeAllUserTokens(ctx context.Context, userID uint) error {
	if err := js.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error; err != nil {
		return err
	}

	js.log.Info().Uint("user_id", userID).Msg("✅ All refresh tokens revoked")
	return nil
}

// CleanupExpiredTokens removes expired and revoked refresh tokens
func (js *JWTService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result := js.db.WithContext(ctx).
		Where("expires_at < ? OR is_revoked = ?", js.now(), true).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
