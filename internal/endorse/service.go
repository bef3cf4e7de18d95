// Package endorse implements the endorsement store: (endorser, freet)
// pairs created and destroyed one at a time, listable from either side
// of the relation.
package endorse

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lam-kelly/fritter/internal/events"
	"github.com/lam-kelly/fritter/internal/freets"
	"github.com/lam-kelly/fritter/internal/users"
)

var (
	// ErrEmptyUsername is returned when the endorser parameter is missing
	ErrEmptyUsername = errors.New("username must be nonempty")
	// ErrUserNotFound is returned when the named endorser does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrFreetNotFound is returned when the freet id does not resolve
	ErrFreetNotFound = errors.New("freet not found")
	// ErrAlreadyEndorsed is returned when the pair already exists
	ErrAlreadyEndorsed = errors.New("already endorsed this freet")
	// ErrNotEndorsed is returned when no such pair exists
	ErrNotEndorsed = errors.New("not endorsed this freet")
)

// UserDirectory is the slice of the user service this store needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// FreetDirectory is the slice of the freet service this store needs.
type FreetDirectory interface {
	GetByID(ctx context.Context, id string) (*freets.Response, error)
}

// Service defines the endorsement store operations
type Service interface {
	Endorse(ctx context.Context, endorserID, freetID string) (*Response, error)
	Unendorse(ctx context.Context, endorserID, freetID string) error
	ListEndorsersOfFreet(ctx context.Context, freetID string) ([]Response, error)
	ListFreetsEndorsedByUsername(ctx context.Context, username string) ([]Response, error)
	CascadeDeleteForUser(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	udir   UserDirectory
	fdir   FreetDirectory
	pubsub events.Publisher
}

// NewService creates a new endorsement service. The publisher may be
// nil, in which case no events are emitted.
func NewService(repo Repository, udir UserDirectory, fdir FreetDirectory, pubsub events.Publisher) Service {
	return &service{repo: repo, udir: udir, fdir: fdir, pubsub: pubsub}
}

// Endorse creates an (endorser, freet) pair
func (s *service) Endorse(ctx context.Context, endorserID, freetID string) (*Response, error) {
	if err := s.checkFreet(ctx, freetID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, endorserID, freetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyEndorsed
	}

	endorser, err := s.udir.GetByID(ctx, endorserID)
	if err != nil {
		return nil, err
	}

	e := Endorsement{
		ID:         uuid.New().String(),
		EndorserID: endorserID,
		FreetID:    freetID,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.publish(events.TypeEndorse, endorserID, freetID)

	resp := NewResponse(PopulatedEndorsement{
		Endorsement:      e,
		EndorserUsername: endorser.Username,
	})
	return &resp, nil
}

// Unendorse removes the (endorser, freet) pair. A missing pair is an
// error, never a silent no-op.
func (s *service) Unendorse(ctx context.Context, endorserID, freetID string) error {
	if err := s.checkFreet(ctx, freetID); err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, endorserID, freetID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotEndorsed
	}

	s.publish(events.TypeUnendorse, endorserID, freetID)

	return nil
}

// ListEndorsersOfFreet returns all endorsements of one freet
func (s *service) ListEndorsersOfFreet(ctx context.Context, freetID string) ([]Response, error) {
	if err := s.checkFreet(ctx, freetID); err != nil {
		return nil, err
	}

	populated, err := s.repo.ListByFreet(ctx, freetID)
	if err != nil {
		return nil, err
	}
	return shapeAll(populated), nil
}

// ListFreetsEndorsedByUsername returns all endorsements made by the
// named user. This is the inverse view of ListEndorsersOfFreet.
func (s *service) ListFreetsEndorsedByUsername(ctx context.Context, username string) ([]Response, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	endorser, err := s.udir.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	populated, err := s.repo.ListByEndorser(ctx, endorser.ID)
	if err != nil {
		return nil, err
	}
	return shapeAll(populated), nil
}

// CascadeDeleteForUser removes every endorsement made by the user.
// Invoked by the account-deletion flow.
func (s *service) CascadeDeleteForUser(ctx context.Context, userID string) error {
	return s.repo.DeleteAllForUser(ctx, userID)
}

func (s *service) checkFreet(ctx context.Context, freetID string) error {
	if _, err := s.fdir.GetByID(ctx, freetID); err != nil {
		if errors.Is(err, freets.ErrFreetNotFound) {
			return ErrFreetNotFound
		}
		return err
	}
	return nil
}

func (s *service) publish(eventType, actor, subject string) {
	if s.pubsub == nil {
		return
	}
	err := s.pubsub.Publish(events.Event{
		Type:       eventType,
		Actor:      actor,
		Subject:    subject,
		OccurredAt: time.Now(),
	})
	if err != nil {
		slog.Warn("Failed to publish engagement event", "type", eventType, "error", err)
	}
}

func shapeAll(populated []PopulatedEndorsement) []Response {
	response := make([]Response, 0, len(populated))
	for _, e := range populated {
		response = append(response, NewResponse(e))
	}
	return response
}
