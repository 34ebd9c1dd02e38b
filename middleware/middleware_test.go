package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homepro-server/apperror"
	"homepro-server/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	users map[string]*models.User
	err   error
}

func (s *stubResolver) Name() string { return "stub" }

func (s *stubResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token == "" {
		return nil, apperror.Unauthorized("Not authorized, no token provided")
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, apperror.Unauthorized("Not authorized, invalid token")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newAuthRouter(resolver *stubResolver) *gin.Engine {
	r := gin.New()
	whoami := func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": user.Email})
	}
	r.GET("/me", AuthMiddleware(resolver, zerolog.Nop()), whoami)
	r.GET("/ws", WebSocketAuthMiddleware(resolver, zerolog.Nop()), whoami)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"good": {ID: 7, Email: "jane@example.com"},
	}}
	r := newAuthRouter(resolver)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "Not authorized, no token provided"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Not authorized, no token provided"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "Not authorized, invalid token"},
		{"valid", "Bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			if tt.message != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.message, body["message"])
			} else {
				assert.Equal(t, float64(7), body["id"])
				assert.Equal(t, "jane@example.com", body["email"])
			}
		})
	}
}

func TestAuthMiddlewareInternalError(t *testing.T) {
	r := newAuthRouter(&stubResolver{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["message"])
}

func TestWebSocketAuthMiddlewareReadsQuery(t *testing.T) {
	r := newAuthRouter(&stubResolver{users: map[string]*models.User{"good": {ID: 3, Email: "ws@example.com"}}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(rl, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)

	limited := hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests. Please try again later.", decode(t, limited)["message"])

	assert.Equal(t, http.StatusOK, hit("10.0.0.2").Code)
}

func TestAuthRateLimiterIsShared(t *testing.T) {
	rl := NewRateLimiter(5, 1)
	r := gin.New()
	r.POST("/login", AuthRateLimitMiddleware(rl, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "300", second.Header().Get("Retry-After"))
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.GetLimiter("old")
	now = now.Add(2 * time.Hour)
	rl.GetLimiter("fresh")

	assert.Equal(t, 1, rl.Cleanup())
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "fresh")
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.GetLimiter("ip").Allow())
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInputValidation(t *testing.T) {
	r := gin.New()
	r.Use(InputValidationMiddleware(16))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/empty", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(body, contentType string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post(`{"a":1}`, "application/json"))
	assert.Equal(t, http.StatusUnsupportedMediaType, post(`a=1`, "text/plain"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, post(`{"a":"0123456789abcdef"}`, "application/json"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/empty", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()), AuditLogMiddleware(zerolog.Nop()), MetricsMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(contextRequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["message"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
