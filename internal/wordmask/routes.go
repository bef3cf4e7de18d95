package wordmask

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the word-mask endpoints on /api/word-mask
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	g := api.Group("/word-mask", auth)

	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
