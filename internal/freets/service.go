// Package freets implements the freet (post) directory consumed by the
// feed views and by the endorsement store's existence checks.
package freets

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lam-kelly/fritter/internal/users"
)

const maxContentLength = 140

var (
	// ErrFreetNotFound is returned when no freet matches the given id
	ErrFreetNotFound = errors.New("freet not found")
	// ErrInvalidContent is returned when content is empty or too long
	ErrInvalidContent = errors.New("invalid freet content")
	// ErrAuthorNotFound is returned when the author username is unknown
	ErrAuthorNotFound = errors.New("author not found")
)

// UserDirectory is the slice of the user service this store needs.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// Service defines the freet directory operations
type Service interface {
	Create(ctx context.Context, authorID, content string) (*Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	ListAll(ctx context.Context) ([]Response, error)
	ListByAuthorUsername(ctx context.Context, username string) ([]Response, error)
	CascadeDeleteForUser(ctx context.Context, userID string) error
}

type service struct {
	repo Repository
	udir UserDirectory
}

// NewService creates a new freet directory service
func NewService(repo Repository, udir UserDirectory) Service {
	return &service{repo: repo, udir: udir}
}

func (s *service) Create(ctx context.Context, authorID, content string) (*Response, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len(content) > maxContentLength {
		return nil, ErrInvalidContent
	}

	f := Freet{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		Content:     content,
		DateCreated: time.Now(),
	}

	if err := s.repo.Insert(ctx, f); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	resp := NewResponse(*created)
	return &resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Response, error) {
	if id == "" {
		return nil, ErrFreetNotFound
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFreetNotFound
		}
		return nil, err
	}

	resp := NewResponse(*f)
	return &resp, nil
}

func (s *service) ListAll(ctx context.Context) ([]Response, error) {
	populated, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return shapeAll(populated), nil
}

func (s *service) ListByAuthorUsername(ctx context.Context, username string) ([]Response, error) {
	author, err := s.udir.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	populated, err := s.repo.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	return shapeAll(populated), nil
}

func (s *service) CascadeDeleteForUser(ctx context.Context, userID string) error {
	return s.repo.DeleteAllForUser(ctx, userID)
}

func shapeAll(populated []PopulatedFreet) []Response {
	response := make([]Response, 0, len(populated))
	for _, f := range populated {
		response = append(response, NewResponse(f))
	}
	return response
}
