package follows

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lam-kelly/fritter/internal/middleware"
)

// Handler exposes the follow graph over HTTP
type Handler struct {
	svc Service
}

// NewHandler creates a new follows handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List serves both listing queries. The two query parameters are
// mutually exclusive and resolved into a discriminated ListQuery once,
// at this boundary; exactly one handler path runs.
// GET /api/follows?follower=U or ?followee=U
func (h *Handler) List(c *gin.Context) {
	query, err := decodeListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var edges []Response
	switch query.Mode {
	case ListFollowees:
		edges, err = h.svc.ListFollowees(c.Request.Context(), query.Username)
	case ListFollowers:
		edges, err = h.svc.ListFollowers(c.Request.Context(), query.Username)
	}

	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, edges)
}

// Create follows a user as the logged-in user.
// POST /api/follows
func (h *Handler) Create(c *gin.Context) {
	followerID := c.GetString(middleware.CtxUserID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	created, err := h.svc.Follow(c.Request.Context(), followerID, req.Followee)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "You successfully followed " + created.Followee + ".",
		"follower": created,
	})
}

// Delete unfollows a user.
// DELETE /api/follows/:followee
func (h *Handler) Delete(c *gin.Context) {
	followerID := c.GetString(middleware.CtxUserID)
	followee := c.Param("followee")

	if err := h.svc.Unfollow(c.Request.Context(), followerID, followee); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You unfollowed successfully."})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provided username must be nonempty."})
	case errors.Is(err, ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "A user cannot follow themselves."})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "A user with the provided username does not exist."})
	case errors.Is(err, ErrAlreadyFollowing):
		// Duplicate relations report 404, matching the published API.
		c.JSON(http.StatusNotFound, gin.H{"error": "The user is already following this followee."})
	case errors.Is(err, ErrNotFollowing):
		c.JSON(http.StatusNotFound, gin.H{"error": "The user is not following this followee."})
	default:
		slog.Error("Follow operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
	}
}

func decodeListQuery(c *gin.Context) (*ListQuery, error) {
	_, hasFollower := c.GetQuery("follower")
	_, hasFollowee := c.GetQuery("followee")

	if hasFollower == hasFollowee {
		return nil, errors.New("Exactly one of follower or followee must be provided.")
	}

	if hasFollower {
		return &ListQuery{Mode: ListFollowees, Username: c.Query("follower")}, nil
	}
	return &ListQuery{Mode: ListFollowers, Username: c.Query("followee")}, nil
}
