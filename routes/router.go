package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homepro-server/database"
	"homepro-server/middleware"
	"homepro-server/services"
	"homepro-server/utils"
	ws "homepro-server/websocket"
)

const (
	apiVersion = "1.0.0"

	// avatars are capped at 5MB, leave room for the multipart envelope
	maxRequestBytes = 6 << 20
)

// Deps carries everything the HTTP layer needs
type Deps struct {
	Log            zerolog.Logger
	DB             *gorm.DB
	Resolver       services.IdentityResolver
	Auth           *services.AuthService
	Providers      *services.ProviderService
	Availability   *services.AvailabilityService
	Bookings       *services.BookingService
	Payments       *services.PaymentService
	Reviews        *services.ReviewService
	Users          *services.UserService
	Hub            *ws.Hub
	Limiter        *middleware.RateLimiter
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	MetricsEnabled bool
}

// NewRouter builds the gin engine with the middleware stack and every API group
func NewRouter(d Deps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
		v.RegisterTagNameFunc(jsonFieldName)
	}

	if d.Limiter == nil {
		d.Limiter = middleware.NewRateLimiter(0, 0)
	}
	if d.AuthLimiter == nil {
		d.AuthLimiter = middleware.NewRateLimiter(0, 0)
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(d.Log))
	router.Use(middleware.AuditLogMiddleware(d.Log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(d.AllowedOrigins))
	router.Use(middleware.InputValidationMiddleware(maxRequestBytes))
	router.Use(middleware.RateLimitMiddleware(d.Limiter, d.Log))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "HomePro API is running!",
			"version": apiVersion,
			"endpoints": gin.H{
				"auth":      "/api/auth",
				"providers": "/api/providers",
				"bookings":  "/api/bookings",
				"payments":  "/api/payments",
				"reviews":   "/api/reviews",
				"user":      "/api/user",
				"events":    "/api/ws/bookings",
			},
		})
	})

	if d.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	requireAuth := middleware.AuthMiddleware(d.Resolver, d.Log)
	authLimit := middleware.AuthRateLimitMiddleware(d.AuthLimiter, d.Log)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck(d.DB))

		RegisterAuthRoutes(api, NewAuthHandler(d.Auth, d.Log), requireAuth, authLimit)
		RegisterProviderRoutes(api, NewProviderHandler(d.Providers, d.Availability, d.Log))
		RegisterBookingRoutes(api, NewBookingHandler(d.Bookings, d.Log), requireAuth)
		RegisterPaymentRoutes(api, NewPaymentHandler(d.Payments, d.Log), requireAuth)
		RegisterReviewRoutes(api, NewReviewHandler(d.Reviews, d.Log), requireAuth)
		RegisterUserRoutes(api, NewUserHandler(d.Users, d.Log), requireAuth)

		if d.Hub != nil {
			RegisterWebSocketRoutes(api, d.Hub, middleware.WebSocketAuthMiddleware(d.Resolver, d.Log))
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": fmt.Sprintf("Route %s not found", c.Request.URL.Path),
		})
	})

	return router, nil
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "OK", http.StatusOK
		if db != nil {
			if err := database.Ping(db); err != nil {
				status, code = "DEGRADED", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
		})
	}
}
