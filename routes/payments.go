package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/middleware"
	"homepro-server/models"
	"homepro-server/services"
)

// PaymentHandler bridges the client checkout with the payment gateway
type PaymentHandler struct {
	payments *services.PaymentService
	log      zerolog.Logger
}

func NewPaymentHandler(payments *services.PaymentService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// RegisterPaymentRoutes registers payment routes
func RegisterPaymentRoutes(router *gin.RouterGroup, h *PaymentHandler, requireAuth gin.HandlerFunc) {
	payments := router.Group("/payments")
	payments.Use(requireAuth)
	{
		payments.POST("/create-payment-intent", h.createPaymentIntent)
		payments.POST("/confirm", h.confirmPayment)
	}
}

func (h *PaymentHandler) createPaymentIntent(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.CreatePaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.payments.CreateIntent(c.Request.Context(), userID, req.BookingID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// clientSecret and amount stay top-level for the checkout page
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"clientSecret": res.ClientSecret,
		"amount":       res.Amount,
		"data":         res,
	})
}

func (h *PaymentHandler) confirmPayment(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.payments.Confirm(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Payment confirmed and booking updated", booking)
}
