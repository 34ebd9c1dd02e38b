package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homepro-server/apperror"
	"homepro-server/metrics"
	"homepro-server/models"
)

// ErrTokenNotRecognized means a resolver could not verify the token and the next one may try
var ErrTokenNotRecognized = errors.New("token not recognized")

// IdentityResolver turns a bearer token into an active user
type IdentityResolver interface {
	Name() string
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// LocalTokenResolver accepts access tokens issued by JWTService
type LocalTokenResolver struct {
	jwt *JWTService
	db  *gorm.DB
}

// NewLocalTokenResolver creates a resolver for self-issued tokens
func NewLocalTokenResolver(jwt *JWTService, db *gorm.DB) *LocalTokenResolver {
	return &LocalTokenResolver{jwt: jwt, db: db}
}

func (r *LocalTokenResolver) Name() string { return "local" }

func (r *LocalTokenResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := r.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenNotRecognized, err)
	}
	return loadActiveUser(r.db.WithContext(ctx).Where("id = ?", userID))
}

// TokenValidator is satisfied by *idtoken.Validator
type TokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// FederatedTokenResolver accepts Google ID tokens and provisions the user on first sight
type FederatedTokenResolver struct {
	validator TokenValidator
	audience  string
	db        *gorm.DB
	log       zerolog.Logger
}

// NewGoogleTokenResolver builds a federated resolver on Google's token validator
func NewGoogleTokenResolver(ctx context.Context, clientID string, db *gorm.DB, log zerolog.Logger) (*FederatedTokenResolver, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create google token validator: %w", err)
	}
	return NewFederatedTokenResolver(v, clientID, db, log), nil
}

// NewFederatedTokenResolver creates a federated resolver with a custom validator
func NewFederatedTokenResolver(v TokenValidator, audience string, db *gorm.DB, log zerolog.Logger) *FederatedTokenResolver {
	return &FederatedTokenResolver{
		validator: v,
		audience:  audience,
		db:        db,
		log:       log.With().Str("component", "identity").Logger(),
	}
}

func (r *FederatedTokenResolver) Name() string { return "google" }

func (r *FederatedTokenResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	payload, err := r.validator.Validate(ctx, token, r.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenNotRecognized, err)
	}

	email, _ := payload.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !claimIsTrue(payload.Claims["email_verified"]) {
		return nil, apperror.Unauthorized("Google account email is not verified")
	}

	if err := r.provision(ctx, email, payload.Claims); err != nil {
		return nil, err
	}
	return loadActiveUser(r.db.WithContext(ctx).Where("email = ?", email))
}

// provision inserts the user keyed on email; an existing row is left untouched
func (r *FederatedTokenResolver) provision(ctx context.Context, email string, claims map[string]interface{}) error {
	name, _ := claims["name"].(string)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user := models.User{
		Email:        email,
		FullName:     name,
		AuthProvider: models.AuthProviderGoogle,
		IsActive:     true,
	}
	if picture, ok := claims["picture"].(string); ok && picture != "" {
		user.AvatarURL = &picture
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&user)
	if result.Error != nil {
		return fmt.Errorf("provision federated user: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		r.log.Info().Str("email", email).Uint("user_id", user.ID).Msg("👤 Provisioned user from Google sign-in")
	}
	return nil
}

// ChainResolver tries each resolver in order until one accepts the token
type ChainResolver struct {
	resolvers []IdentityResolver
	log       zerolog.Logger
}

// NewChainResolver creates a resolver chain; nil entries are skipped
func NewChainResolver(log zerolog.Logger, resolvers ...IdentityResolver) *ChainResolver {
	chain := &ChainResolver{log: log.With().Str("component", "identity").Logger()}
	for _, r := range resolvers {
		if r != nil {
			chain.resolvers = append(chain.resolvers, r)
		}
	}
	return chain
}

func (c *ChainResolver) Name() string { return "chain" }

func (c *ChainResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.Unauthorized("Not authorized, no token provided")
	}

	for _, r := range c.resolvers {
		user, err := r.Resolve(ctx, token)
		if err == nil {
			metrics.IncIdentityResolved(r.Name())
			return user, nil
		}
		if !errors.Is(err, ErrTokenNotRecognized) {
			return nil, err
		}
		c.log.Debug().Str("resolver", r.Name()).Err(err).Msg("🔍 Token not accepted")
	}

	return nil, apperror.Unauthorized("Not authorized, invalid token")
}

func loadActiveUser(query *gorm.DB) (*models.User, error) {
	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperror.Unauthorized("User account is deactivated")
	}
	return &user, nil
}

func claimIsTrue(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}
