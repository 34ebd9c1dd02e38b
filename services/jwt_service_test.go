package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homepro-server/config"
	"homepro-server/models"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret-with-enough-entropy",
	ExpiryHours:       1,
	RefreshExpiryDays: 7,
	Issuer:            "homepro-test",
}

func newJWTService(f *fixture) *JWTService {
	return NewJWTService(f.db, testJWTConfig, zerolog.Nop())
}

func TestAccessTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	js := newJWTService(f)

	token, expiresIn, err := js.GenerateAccessToken(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), expiresIn)

	userID, err := js.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, userID)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &Claims{})
	require.NoError(t, err)
	subject, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "1", subject)
}

func TestAccessTokenRejected(t *testing.T) {
	f := newFixture(t)
	js := newJWTService(f)

	otherCfg := testJWTConfig
	otherCfg.Secret = "another-secret"
	forged, _, err := NewJWTService(f.db, otherCfg, zerolog.Nop()).GenerateAccessToken(f.user.ID)
	require.NoError(t, err)
	_, err = js.ValidateAccessToken(forged)
	assert.Error(t, err)

	otherIssuer := testJWTConfig
	otherIssuer.Issuer = "someone-else"
	foreign, _, err := NewJWTService(f.db, otherIssuer, zerolog.Nop()).GenerateAccessToken(f.user.ID)
	require.NoError(t, err)
	_, err = js.ValidateAccessToken(foreign)
	assert.Error(t, err)

	expired := newJWTService(f)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateAccessToken(f.user.ID)
	require.NoError(t, err)
	_, err = js.ValidateAccessToken(old)
	assert.Error(t, err)

	_, err = js.ValidateAccessToken("not-a-jwt")
	assert.Error(t, err)
}

func TestRefreshTokenLifecycle(t *testing.T) {
	f := newFixture(t)
	js := newJWTService(f)
	ctx := context.Background()

	pair, err := js.GenerateTokenPair(ctx, f.user.ID, ClientInfo{UserAgent: "go-test", IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Len(t, pair.RefreshToken, 64)

	stored, err := js.ValidateRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, stored.UserID)
	assert.Equal(t, "go-test", stored.UserAgent)

	refreshed, err := js.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, js.RevokeRefreshToken(ctx, pair.RefreshToken))
	_, err = js.ValidateRefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	assert.ErrorIs(t, js.RevokeRefreshToken(ctx, "missing"), ErrRefreshTokenNotFound)
	_, err = js.ValidateRefreshToken(ctx, "missing")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRevokeAllAndCleanup(t *testing.T) {
	f := newFixture(t)
	js := newJWTService(f)
	ctx := context.Background()

	first, err := js.GenerateTokenPair(ctx, f.user.ID, ClientInfo{})
	require.NoError(t, err)
	_, err = js.GenerateTokenPair(ctx, f.user.ID, ClientInfo{})
	require.NoError(t, err)
	kept, err := js.GenerateTokenPair(ctx, f.other.ID, ClientInfo{})
	require.NoError(t, err)

	expired := models.RefreshToken{Token: "expired-token", UserID: f.other.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, f.db.Create(&expired).Error)

	require.NoError(t, js.RevokeAllUserTokens(ctx, f.user.ID))
	_, err = js.ValidateRefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

	removed, err := js.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	_, err = js.ValidateRefreshToken(ctx, kept.RefreshToken)
	assert.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}
