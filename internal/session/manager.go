// Package session provides cookie-session management backed by Redis
// with TTL-based expiration. The auth middleware and the users handlers
// share it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when session data is invalid
	ErrInvalidSession = errors.New("invalid session")
)

// Manager defines the interface for session management operations
type Manager interface {
	Create(ctx context.Context, userID, username string, maxAge int) (string, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type manager struct {
	store Store
}

// NewManager creates a new session manager
func NewManager(store Store) Manager {
	return &manager{store: store}
}

// Create creates a new session and returns the session ID
func (m *manager) Create(ctx context.Context, userID, username string, maxAge int) (string, error) {
	sessionID := uuid.New().String()

	now := time.Now()
	sess := &Session{
		ID:        sessionID,
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(maxAge) * time.Second),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(sessionID)
	ttl := time.Duration(maxAge) * time.Second

	if err := m.store.Set(ctx, key, string(data), ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// Get retrieves a session by ID
func (m *manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	key := sessionKey(sessionID)

	data, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, ErrInvalidSession
	}

	if time.Now().After(sess.ExpiresAt) {
		m.store.Delete(ctx, key)
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Delete removes a session
func (m *manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionKey(sessionID))
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
