package endorse

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the endorsement endpoints on /api/endorse
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	g := api.Group("/endorse")

	g.GET("", h.List)
	g.POST("", auth, h.Create)
	g.DELETE("/:freetId", auth, h.Delete)
}
