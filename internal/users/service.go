// Package users implements the user directory: account creation, lookup
// by id or username, credential checks, and account deletion with
// cascading cleanup of everything the user touched.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lam-kelly/fritter/internal/database"
)

var (
	// ErrUserNotFound is returned when no user matches the given id or username
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameExists is returned when the username is already taken
	ErrUsernameExists = errors.New("username already taken")
	// ErrInvalidCredentials is returned when the password does not match
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Cascader removes everything a store holds for a user. The follow,
// endorsement, word-mask and freet stores register themselves so that
// account deletion cleans up every reference.
type Cascader interface {
	CascadeDeleteForUser(ctx context.Context, userID string) error
}

// Service defines the user directory operations
type Service interface {
	Create(ctx context.Context, username, password string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Search(ctx context.Context, username string) ([]User, error)
	Delete(ctx context.Context, userID string) error
	RegisterCascader(c Cascader)
}

type service struct {
	db       database.Service
	cascades []Cascader
}

// NewService creates a new user directory service
func NewService(db database.Service) Service {
	return &service{db: db}
}

// RegisterCascader adds a store to the account-deletion cascade chain
func (s *service) RegisterCascader(c Cascader) {
	s.cascades = append(s.cascades, c)
}

// Create registers a new user with a bcrypt-hashed password
func (s *service) Create(ctx context.Context, username, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	const q = `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.Exec(ctx, q, user.ID, user.Username, user.PasswordHash, user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("Created new user", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// Authenticate verifies credentials and returns the matching user
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by id
func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRow(ctx, q, id))
}

// GetByUsername retrieves a user by username
func (s *service) GetByUsername(ctx context.Context, username string) (*User, error) {
	const q = `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	return s.scanUser(s.db.QueryRow(ctx, q, username))
}

// Search returns users whose username matches exactly. Kept as a list so
// the client's search view consumes the same shape for zero or one hit.
func (s *service) Search(ctx context.Context, username string) ([]User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return []User{}, nil
		}
		return nil, err
	}
	return []User{*user}, nil
}

// Delete removes the user after running every registered cascade.
// Cascade order matters: engagement rows referencing the user must go
// before the user row itself.
func (s *service) Delete(ctx context.Context, userID string) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	for _, c := range s.cascades {
		if err := c.CascadeDeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("cascade delete failed: %w", err)
		}
	}

	const q = `DELETE FROM users WHERE id = $1`
	if _, err := s.db.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("Deleted user", "user_id", userID)

	return nil
}

func (s *service) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation checks if the error is a unique constraint violation
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
