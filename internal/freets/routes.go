package freets

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the freet endpoints
func RegisterRoutes(api *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	api.GET("/freets", h.List)
	api.POST("/freets", auth, h.Create)
	api.GET("/users/:username/freets", h.ListByAuthor)
}
