package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"homepro-server/apperror"
	"homepro-server/middleware"
	"homepro-server/models"
	"homepro-server/services"
	"homepro-server/utils"
)

// UserHandler serves the caller's profile and addresses
type UserHandler struct {
	users *services.UserService
	log   zerolog.Logger
}

func NewUserHandler(users *services.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// RegisterUserRoutes registers profile and address routes
func RegisterUserRoutes(router *gin.RouterGroup, h *UserHandler, requireAuth gin.HandlerFunc) {
	user := router.Group("/user")
	user.Use(requireAuth)
	{
		user.GET("/profile", h.getProfile)
		user.PUT("/profile", h.updateProfile)
		user.PUT("/profile/avatar", h.uploadAvatar)

		user.GET("/addresses", h.listAddresses)
		user.POST("/addresses", h.addAddress)
		user.PUT("/addresses/:id", h.updateAddress)
		user.DELETE("/addresses/:id", h.deleteAddress)
	}
}

func (h *UserHandler) getProfile(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.ProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *UserHandler) uploadAvatar(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	header, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, h.log, apperror.Validation("Please upload an image in the avatar field"))
		return
	}
	if !utils.ValidateImageFile(header) {
		respondError(c, h.log, apperror.Validation("Avatar must be a JPG, PNG or WEBP image up to 5MB"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer file.Close()

	user, err := h.users.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Avatar updated successfully", user)
}

func (h *UserHandler) listAddresses(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	addresses, err := h.users.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, addresses, len(addresses))
}

func (h *UserHandler) addAddress(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var req models.AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := h.users.AddAddress(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Address added successfully", address)
}

func (h *UserHandler) updateAddress(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var req models.AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := h.users.UpdateAddress(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Address updated successfully", address)
}

func (h *UserHandler) deleteAddress(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.users.DeleteAddress(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Address deleted successfully", nil)
}
