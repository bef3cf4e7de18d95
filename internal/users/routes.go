package users

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the user directory endpoints on /api/users
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	g := api.Group("/users")

	g.GET("", h.Search)
	g.POST("", h.Register)
	g.POST("/session", h.Login)
	g.DELETE("/session", h.Logout)
	g.DELETE("", auth, h.DeleteAccount)
}
