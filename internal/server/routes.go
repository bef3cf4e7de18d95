package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lam-kelly/fritter/internal/config"
	"github.com/lam-kelly/fritter/internal/endorse"
	"github.com/lam-kelly/fritter/internal/follows"
	"github.com/lam-kelly/fritter/internal/freets"
	"github.com/lam-kelly/fritter/internal/middleware"
	"github.com/lam-kelly/fritter/internal/users"
	"github.com/lam-kelly/fritter/internal/wordmask"
)

// RegisterRoutes builds the router and mounts every domain under /api.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetEnvOrDefault("FRONTEND_ORIGIN", "http://localhost:8080")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Session cookie
	}))

	r.GET("/health", s.healthHandler)

	auth := middleware.RequireSession(s.sessions)
	api := r.Group("/api")

	users.RegisterRoutes(api, users.NewHandler(s.users, s.sessions), auth)
	freets.RegisterRoutes(api, freets.NewHandler(s.freets), auth)
	follows.RegisterRoutes(api, follows.NewHandler(s.follows), auth)
	endorse.RegisterRoutes(api, endorse.NewHandler(s.endorse), auth)
	wordmask.RegisterRoutes(api, wordmask.NewHandler(s.wordmask), auth)

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	response := make(map[string]interface{})

	response["database"] = s.db.Health()

	sessionHealth := make(map[string]string)
	if err := s.sessionStore.Health(c.Request.Context()); err != nil {
		sessionHealth["status"] = "down"
		sessionHealth["error"] = err.Error()
	} else {
		sessionHealth["status"] = "up"
	}
	response["sessions"] = sessionHealth

	c.JSON(http.StatusOK, response)
}
