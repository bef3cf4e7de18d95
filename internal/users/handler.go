package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lam-kelly/fritter/internal/config"
	"github.com/lam-kelly/fritter/internal/middleware"
	"github.com/lam-kelly/fritter/internal/session"
)

// Handler exposes the user directory over HTTP
type Handler struct {
	svc      Service
	sessions session.Manager
}

// NewHandler creates a new users handler
func NewHandler(svc Service, sessions session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Register creates an account and opens a session.
// POST /api/users
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-50 alphanumeric characters and password at least 6 characters."})
		return
	}

	user, err := h.svc.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this username already exists."})
			return
		}
		slog.Error("Failed to create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account."})
		return
	}

	if err := h.openSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Your account was created successfully.",
		"user":    NewResponse(user),
	})
}

// Login verifies credentials and opens a session.
// POST /api/users/session
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password must be nonempty."})
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid username or password."})
			return
		}
		slog.Error("Failed to authenticate", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in."})
		return
	}

	if err := h.openSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "You have logged in successfully.",
		"user":    NewResponse(user),
	})
}

// Logout closes the current session.
// DELETE /api/users/session
func (h *Handler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie("session_id"); err == nil {
		if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
			slog.Warn("Failed to delete session", "error", err)
		}
	}

	c.SetCookie("session_id", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out successfully."})
}

// DeleteAccount removes the caller's account and cascades through every
// store referencing it.
// DELETE /api/users
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	if err := h.svc.Delete(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "A user with the provided id does not exist."})
			return
		}
		slog.Error("Failed to delete user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account."})
		return
	}

	if sessionID, err := c.Cookie("session_id"); err == nil {
		if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
			slog.Warn("Failed to delete session", "error", err)
		}
	}
	c.SetCookie("session_id", "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"message": "Your account was deleted successfully."})
}

// Search looks up users by exact username.
// GET /api/users?username=U
func (h *Handler) Search(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provided username must be nonempty."})
		return
	}

	matches, err := h.svc.Search(c.Request.Context(), username)
	if err != nil {
		slog.Error("Failed to search users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users."})
		return
	}

	response := make([]Response, 0, len(matches))
	for i := range matches {
		response = append(response, NewResponse(&matches[i]))
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) openSession(c *gin.Context, user *User) error {
	maxAge := sessionMaxAge()

	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID, user.Username, maxAge)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		return err
	}

	c.SetCookie("session_id", sessionID, maxAge, "/", "", false, true)
	return nil
}

func sessionMaxAge() int {
	if v := config.GetEnvOrDefault("SESSION_MAX_AGE", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 86400
}
