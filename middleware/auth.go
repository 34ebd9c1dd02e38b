package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/apperror"
	"homepro-server/models"
	"homepro-server/services"
	"homepro-server/utils"
)

// Context keys set by the auth middlewares
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// AuthMiddleware resolves the bearer token to an active user and sets user context
func AuthMiddleware(resolver services.IdentityResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := utils.BearerToken(c.GetHeader("Authorization"))
		authenticate(c, resolver, log, token)
	}
}

// WebSocketAuthMiddleware reads the token from the query string since browsers
// cannot set headers on a WebSocket handshake
func WebSocketAuthMiddleware(resolver services.IdentityResolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token, _ = utils.BearerToken(c.GetHeader("Authorization"))
		}
		authenticate(c, resolver, log, token)
	}
}

func authenticate(c *gin.Context, resolver services.IdentityResolver, log zerolog.Logger, token string) {
	user, err := resolver.Resolve(c.Request.Context(), token)
	if err != nil {
		if appErr, ok := apperror.As(err); ok {
			log.Debug().Str("path", c.Request.URL.Path).Str("reason", appErr.Message).Msg("🔒 Request not authenticated")
			abort(c, appErr.Status(), appErr.Message)
			return
		}
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("❌ Identity resolution failed")
		abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	c.Next()
}

// CurrentUserID returns the authenticated user's id
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// CurrentUser returns the authenticated user
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
