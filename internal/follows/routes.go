package follows

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the follow graph endpoints on /api/follows
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	g := api.Group("/follows")

	g.GET("", h.List)
	g.POST("", auth, h.Create)
	g.DELETE("/:followee", auth, h.Delete)
}
