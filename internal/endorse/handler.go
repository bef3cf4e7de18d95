package endorse

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lam-kelly/fritter/internal/middleware"
)

// Handler exposes the endorsement store over HTTP
type Handler struct {
	svc Service
}

// NewHandler creates a new endorse handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List serves both listing queries. The two query parameters are
// mutually exclusive and resolved into a discriminated ListQuery once,
// at this boundary; exactly one handler path runs.
// GET /api/endorse?freetId=F or ?endorser=U
func (h *Handler) List(c *gin.Context) {
	query, err := decodeListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var endorsements []Response
	switch query.Mode {
	case ListByFreet:
		endorsements, err = h.svc.ListEndorsersOfFreet(c.Request.Context(), query.FreetID)
	case ListByEndorser:
		endorsements, err = h.svc.ListFreetsEndorsedByUsername(c.Request.Context(), query.Endorser)
	}

	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, endorsements)
}

// Create endorses a freet as the logged-in user.
// POST /api/endorse
func (h *Handler) Create(c *gin.Context) {
	endorserID := c.GetString(middleware.CtxUserID)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	created, err := h.svc.Endorse(c.Request.Context(), endorserID, req.FreetID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "You successfully endorsed freet with id " + created.Freet + ".",
		"endorsement": created,
	})
}

// Delete removes the logged-in user's endorsement of a freet.
// DELETE /api/endorse/:freetId
func (h *Handler) Delete(c *gin.Context) {
	endorserID := c.GetString(middleware.CtxUserID)
	freetID := c.Param("freetId")

	if err := h.svc.Unendorse(c.Request.Context(), endorserID, freetID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Your endorsement was deleted successfully."})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provided endorser username must be nonempty."})
	case errors.Is(err, ErrFreetNotFound):
		// Field-scoped error body, matching the published API.
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"freetNotFound": "Freet with the provided freet ID does not exist.",
		}})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "A user with the provided username does not exist."})
	case errors.Is(err, ErrAlreadyEndorsed):
		// Duplicate relations report 404, matching the published API.
		c.JSON(http.StatusNotFound, gin.H{"error": "User has already endorsed the specified freet."})
	case errors.Is(err, ErrNotEndorsed):
		c.JSON(http.StatusNotFound, gin.H{"error": "User has not endorsed the specified freet."})
	default:
		slog.Error("Endorse operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong."})
	}
}

func decodeListQuery(c *gin.Context) (*ListQuery, error) {
	_, hasFreet := c.GetQuery("freetId")
	_, hasEndorser := c.GetQuery("endorser")

	if hasFreet == hasEndorser {
		return nil, errors.New("Exactly one of freetId or endorser must be provided.")
	}

	if hasFreet {
		return &ListQuery{Mode: ListByFreet, FreetID: c.Query("freetId")}, nil
	}
	return &ListQuery{Mode: ListByEndorser, Endorser: c.Query("endorser")}, nil
}
