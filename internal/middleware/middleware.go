// Package middleware holds the shared gin middleware chain: session
// authentication, request-id correlation and structured request logging.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lam-kelly/fritter/internal/session"
)

// Context keys set by RequireSession for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// RequireSession validates the session cookie and injects the caller's
// identity into the gin context. Requests without a valid session are
// rejected with 403.
func RequireSession(sessionMgr session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie("session_id")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You must be logged in to perform this action.",
			})
			return
		}

		sess, err := sessionMgr.Get(c.Request.Context(), sessionID)
		if err != nil {
			slog.Warn("Invalid session",
				"session_id", sessionID,
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You must be logged in to perform this action.",
			})
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You must be logged in to perform this action.",
			})
			return
		}

		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxUsername, sess.Username)

		c.Next()
	}
}

// RequestID generates a unique request ID for log correlation
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// Logging logs all requests with structured attributes, leveled by status
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		latency := time.Since(start)

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", float64(latency.Milliseconds()),
			"client_ip", c.ClientIP(),
			"response_size", rw.Size(),
		}

		if query != "" {
			attrs = append(attrs, "query", query)
		}
		if userID, exists := c.Get(CtxUserID); exists {
			attrs = append(attrs, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}
