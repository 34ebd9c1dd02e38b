package routes

import (
	"github.com/gin-gonic/gin"

	"homepro-server/middleware"
	ws "homepro-server/websocket"
)

// RegisterWebSocketRoutes registers the live booking-event stream
func RegisterWebSocketRoutes(router *gin.RouterGroup, hub *ws.Hub, requireAuth gin.HandlerFunc) {
	router.GET("/ws/bookings", requireAuth, func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		ws.ServeWebSocket(hub, c.Writer, c.Request, userID)
	})
}
