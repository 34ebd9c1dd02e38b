package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/middleware"
	"homepro-server/models"
	"homepro-server/services"
)

// AuthHandler serves account and session endpoints
type AuthHandler struct {
	auth *services.AuthService
	log  zerolog.Logger
}

func NewAuthHandler(auth *services.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup, h *AuthHandler, requireAuth, authLimit gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", authLimit, h.signUp)
		auth.POST("/login", authLimit, h.login)
		auth.POST("/google", authLimit, h.googleSignIn)
		auth.POST("/refresh", authLimit, h.refresh)
		auth.POST("/logout", h.logout)
		auth.GET("/me", requireAuth, h.me)
	}
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

func (h *AuthHandler) signUp(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", res)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", res)
}

func (h *AuthHandler) googleSignIn(c *gin.Context) {
	var req models.GoogleSignInRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.GoogleSignIn(c.Request.Context(), req.IDToken, clientInfo(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", res)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed successfully", pair)
}

func (h *AuthHandler) logout(c *gin.Context) {
	var req models.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	respond(c, http.StatusOK, "", user)
}
