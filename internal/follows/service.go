// Package follows implements the follow graph: directed edges between
// users, created and destroyed one at a time, with both endpoints
// resolved to usernames in every response.
package follows

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lam-kelly/fritter/internal/events"
	"github.com/lam-kelly/fritter/internal/users"
)

var (
	// ErrEmptyUsername is returned when a username parameter is missing
	ErrEmptyUsername = errors.New("username must be nonempty")
	// ErrUserNotFound is returned when the named user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfFollow is returned when a user tries to follow themselves
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned when the edge already exists
	ErrAlreadyFollowing = errors.New("already following this user")
	// ErrNotFollowing is returned when no such edge exists
	ErrNotFollowing = errors.New("not following this user")
)

// UserDirectory is the slice of the user service this store needs for
// username/id resolution.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// Service defines the follow graph operations
type Service interface {
	Follow(ctx context.Context, followerID, followeeUsername string) (*Response, error)
	Unfollow(ctx context.Context, followerID, followeeUsername string) error
	ListFollowees(ctx context.Context, username string) ([]Response, error)
	ListFollowers(ctx context.Context, username string) ([]Response, error)
	CascadeDeleteForUser(ctx context.Context, userID string) error
}

type service struct {
	repo   Repository
	udir   UserDirectory
	pubsub events.Publisher
}

// NewService creates a new follow graph service. The publisher may be
// nil, in which case no events are emitted.
func NewService(repo Repository, udir UserDirectory, pubsub events.Publisher) Service {
	return &service{repo: repo, udir: udir, pubsub: pubsub}
}

// Follow creates an edge from the caller to the named user. The
// self-follow check runs against the caller's own username before the
// followee is even resolved, so follow(A, A) fails the same way whether
// or not the directory lookup would succeed.
func (s *service) Follow(ctx context.Context, followerID, followeeUsername string) (*Response, error) {
	if followeeUsername == "" {
		return nil, ErrEmptyUsername
	}

	follower, err := s.udir.GetByID(ctx, followerID)
	if err != nil {
		return nil, err
	}
	if follower.Username == followeeUsername {
		return nil, ErrSelfFollow
	}

	followee, err := s.udir.GetByUsername(ctx, followeeUsername)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if followee.ID == followerID {
		return nil, ErrSelfFollow
	}

	exists, err := s.repo.Exists(ctx, followerID, followee.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFollowing
	}

	e := Edge{
		ID:         uuid.New().String(),
		FollowerID: followerID,
		FolloweeID: followee.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.publish(events.TypeFollow, followerID, followee.ID)

	resp := NewResponse(PopulatedEdge{
		Edge:             e,
		FollowerUsername: follower.Username,
		FolloweeUsername: followee.Username,
	})
	return &resp, nil
}

// Unfollow removes the edge to the named user. A missing edge is an
// error, never a silent no-op.
func (s *service) Unfollow(ctx context.Context, followerID, followeeUsername string) error {
	if followeeUsername == "" {
		return ErrEmptyUsername
	}

	followee, err := s.udir.GetByUsername(ctx, followeeUsername)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	affected, err := s.repo.Delete(ctx, followerID, followee.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFollowing
	}

	s.publish(events.TypeUnfollow, followerID, followee.ID)

	return nil
}

// ListFollowees returns all edges where the named user is the follower
func (s *service) ListFollowees(ctx context.Context, username string) ([]Response, error) {
	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	edges, err := s.repo.ListByFollower(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return shapeAll(edges), nil
}

// ListFollowers returns all edges where the named user is the followee
func (s *service) ListFollowers(ctx context.Context, username string) ([]Response, error) {
	user, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	edges, err := s.repo.ListByFollowee(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return shapeAll(edges), nil
}

// CascadeDeleteForUser removes every edge touching the user, in both
// directions. Invoked by the account-deletion flow.
func (s *service) CascadeDeleteForUser(ctx context.Context, userID string) error {
	if err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}

	s.publish(events.TypeUserDeleted, userID, userID)

	return nil
}

func (s *service) resolve(ctx context.Context, username string) (*users.User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	user, err := s.udir.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
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

func shapeAll(edges []PopulatedEdge) []Response {
	response := make([]Response, 0, len(edges))
	for _, e := range edges {
		response = append(response, NewResponse(e))
	}
	return response
}
