package wordmask

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lam-kelly/fritter/internal/middleware"
)

// Handler exposes the word-mask store over HTTP. Every route operates
// on the logged-in user's own rules.
type Handler struct {
	svc Service
}

// NewHandler creates a new word-mask handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List returns the logged-in user's rules.
// GET /api/word-mask
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	rules, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// Create adds a rule for the logged-in user.
// POST /api/word-mask
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, req.CensoredWord, req.ReplacementWord)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Your word mask was created successfully.",
		"wordMask": created,
	})
}

// Update changes a rule's replacement word.
// PUT /api/word-mask/:id
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	ruleID := c.Param("id")

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), userID, ruleID, req.ReplacementWord)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Your word mask was updated successfully.",
		"wordMask": updated,
	})
}

// Delete removes a rule.
// DELETE /api/word-mask/:id
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	ruleID := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), userID, ruleID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your word mask was deleted successfully."})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidWord):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Censored word must be at least one character long."})
	case errors.Is(err, ErrDuplicateRule):
		// Duplicate rules report 404, matching the published API.
		c.JSON(http.StatusNotFound, gin.H{"error": "You already have a word mask for this word."})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Word mask with the provided ID does not exist."})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot modify other users' word masks."})
	default:
		slog.Error("Word mask operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
	}
}
