package freets

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lam-kelly/fritter/internal/middleware"
)

// Handler exposes the freet directory over HTTP
type Handler struct {
	svc Service
}

// NewHandler creates a new freets handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List returns all freets, newest first.
// GET /api/freets
func (h *Handler) List(c *gin.Context) {
	all, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list freets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list freets."})
		return
	}
	c.JSON(http.StatusOK, all)
}

// ListByAuthor returns one author's freets.
// GET /api/users/:username/freets
func (h *Handler) ListByAuthor(c *gin.Context) {
	username := c.Param("username")

	byAuthor, err := h.svc.ListByAuthorUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, ErrAuthorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "A user with the provided username does not exist."})
			return
		}
		slog.Error("Failed to list freets by author", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list freets."})
		return
	}
	c.JSON(http.StatusOK, byAuthor)
}

// Create posts a new freet as the logged-in user.
// POST /api/freets
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		if errors.Is(err, ErrInvalidContent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Freet content must be nonempty and at most 140 characters."})
			return
		}
		slog.Error("Failed to create freet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create freet."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your freet was created successfully.",
		"freet":   created,
	})
}
