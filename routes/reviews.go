package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/middleware"
	"homepro-server/models"
	"homepro-server/services"
)

type ReviewHandler struct {
	reviews *services.ReviewService
	log     zerolog.Logger
}

func NewReviewHandler(reviews *services.ReviewService, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

// RegisterReviewRoutes registers review routes
func RegisterReviewRoutes(router *gin.RouterGroup, h *ReviewHandler, requireAuth gin.HandlerFunc) {
	reviews := router.Group("/reviews")
	{
		reviews.POST("", requireAuth, h.createReview)
		reviews.GET("/provider/:provider_id", h.listProviderReviews)
	}
}

func (h *ReviewHandler) createReview(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Review created successfully", review)
}

func (h *ReviewHandler) listProviderReviews(c *gin.Context) {
	providerID, err := paramID(c, "provider_id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	reviews, err := h.reviews.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, reviews, len(reviews))
}
