package follows

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lam-kelly/fritter/internal/database"
)

// Repository handles follow-edge persistence. List reads resolve both
// endpoints to usernames via joins.
type Repository interface {
	Insert(ctx context.Context, e Edge) error
	Delete(ctx context.Context, followerID, followeeID string) (int64, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	ListByFollower(ctx context.Context, followerID string) ([]PopulatedEdge, error)
	ListByFollowee(ctx context.Context, followeeID string) ([]PopulatedEdge, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	db database.Service
}

// NewRepository creates a postgres-backed follow repository
func NewRepository(db database.Service) Repository {
	return &postgresRepository{db: db}
}

const selectEdge = `
	SELECT f.id, f.follower_id, f.followee_id, f.created_at,
	       fr.username, fe.username
	FROM follows f
	JOIN users fr ON fr.id = f.follower_id
	JOIN users fe ON fe.id = f.followee_id
`

func (r *postgresRepository) Insert(ctx context.Context, e Edge) error {
	const q = `
		INSERT INTO follows (id, follower_id, followee_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, q, e.ID, e.FollowerID, e.FolloweeID, e.CreatedAt); err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, followerID, followeeID string) (int64, error) {
	const q = `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	res, err := r.db.Exec(ctx, q, followerID, followeeID)
	if err != nil {
		return 0, fmt.Errorf("delete follow: %w", err)
	}
	return res.RowsAffected()
}

func (r *postgresRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_id = $1 AND followee_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, q, followerID, followeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListByFollower(ctx context.Context, followerID string) ([]PopulatedEdge, error) {
	rows, err := r.db.Query(ctx, selectEdge+` WHERE f.follower_id = $1`, followerID)
	if err != nil {
		return nil, fmt.Errorf("list followees: %w", err)
	}
	return scanEdges(rows)
}

func (r *postgresRepository) ListByFollowee(ctx context.Context, followeeID string) ([]PopulatedEdge, error) {
	rows, err := r.db.Query(ctx, selectEdge+` WHERE f.followee_id = $1`, followeeID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return scanEdges(rows)
}

// DeleteAllForUser removes edges in both directions: where the user
// follows and where the user is followed.
func (r *postgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM follows WHERE follower_id = $1 OR followee_id = $1`

	if _, err := r.db.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("cascade delete follows: %w", err)
	}
	return nil
}

func scanEdges(rows *sql.Rows) ([]PopulatedEdge, error) {
	defer rows.Close()

	edges := []PopulatedEdge{}
	for rows.Next() {
		var e PopulatedEdge
		err := rows.Scan(&e.ID, &e.FollowerID, &e.FolloweeID, &e.CreatedAt,
			&e.FollowerUsername, &e.FolloweeUsername)
		if err != nil {
			return nil, fmt.Errorf("scan follow: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follows: %w", err)
	}
	return edges, nil
}
