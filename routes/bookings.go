package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/middleware"
	"homepro-server/models"
	"homepro-server/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingHandler serves the booking lifecycle endpoints
type BookingHandler struct {
	bookings *services.BookingService
	log      zerolog.Logger
}

func NewBookingHandler(bookings *services.BookingService, log zerolog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, log: log}
}

// RegisterBookingRoutes registers booking routes; all of them require auth
func RegisterBookingRoutes(router *gin.RouterGroup, h *BookingHandler, requireAuth gin.HandlerFunc) {
	bookings := router.Group("/bookings")
	bookings.Use(requireAuth)
	{
		bookings.POST("", h.createBooking)
		bookings.GET("", h.listBookings)
		bookings.GET("/export", h.exportBookings)
		bookings.GET("/:id", h.getBooking)
		bookings.PUT("/:id/cancel", h.cancelBooking)
	}
}

func (h *BookingHandler) createBooking(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Booking created successfully", booking)
}

func (h *BookingHandler) listBookings(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	bookings, err := h.bookings.List(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, bookings, len(bookings))
}

func (h *BookingHandler) getBooking(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "", booking)
}

func (h *BookingHandler) cancelBooking(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// the body is optional
	var req models.CancelBookingRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookings.Cancel(c.Request.Context(), userID, id, req.CancellationReason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Booking cancelled successfully", booking)
}

func (h *BookingHandler) exportBookings(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	bookings, err := h.bookings.List(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var buf bytes.Buffer
	if err := services.WriteBookingsXLSX(&buf, bookings); err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
