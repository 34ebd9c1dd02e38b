package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/apperror"
	"homepro-server/services"
)

// ProviderHandler serves the public catalog and slot availability
type ProviderHandler struct {
	providers    *services.ProviderService
	availability *services.AvailabilityService
	log          zerolog.Logger
}

func NewProviderHandler(providers *services.ProviderService, availability *services.AvailabilityService, log zerolog.Logger) *ProviderHandler {
	return &ProviderHandler{providers: providers, availability: availability, log: log}
}

// RegisterProviderRoutes registers category and provider routes
func RegisterProviderRoutes(router *gin.RouterGroup, h *ProviderHandler) {
	router.GET("/categories", h.listCategories)
	router.GET("/providers", h.listProviders)
	router.GET("/providers/:id", h.getProvider)
	router.GET("/providers/:id/availability", h.getAvailability)
}

func (h *ProviderHandler) listCategories(c *gin.Context) {
	categories, err := h.providers.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, categories, len(categories))
}

func (h *ProviderHandler) listProviders(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, h.log, apperror.Validation("Invalid category_id"))
			return
		}
		categoryID = uint(id)
	}

	providers, err := h.providers.ListProviders(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, providers, len(providers))
}

func (h *ProviderHandler) getProvider(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	provider, err := h.providers.GetProvider(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "", provider)
}

func (h *ProviderHandler) getAvailability(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	availability, err := h.availability.ForDate(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if !availability.Available {
		respond(c, http.StatusOK, "Provider not available on this day", availability)
		return
	}
	respond(c, http.StatusOK, "", availability)
}
