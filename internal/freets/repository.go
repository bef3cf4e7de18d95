package freets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lam-kelly/fritter/internal/database"
)

// Repository handles freet persistence. Reads resolve the author
// reference to a username via a join.
type Repository interface {
	Insert(ctx context.Context, f Freet) error
	GetByID(ctx context.Context, id string) (*PopulatedFreet, error)
	ListAll(ctx context.Context) ([]PopulatedFreet, error)
	ListByAuthor(ctx context.Context, authorID string) ([]PopulatedFreet, error)
	DeleteAllForUser(ctx context.Context, authorID string) error
}

type postgresRepository struct {
	db database.Service
}

// NewRepository creates a postgres-backed freet repository
func NewRepository(db database.Service) Repository {
	return &postgresRepository{db: db}
}

const selectFreet = `
	SELECT f.id, f.author_id, f.content, f.date_created, u.username
	FROM freets f
	JOIN users u ON u.id = f.author_id
`

func (r *postgresRepository) Insert(ctx context.Context, f Freet) error {
	const q = `
		INSERT INTO freets (id, author_id, content, date_created)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, q, f.ID, f.AuthorID, f.Content, f.DateCreated); err != nil {
		return fmt.Errorf("insert freet: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*PopulatedFreet, error) {
	row := r.db.QueryRow(ctx, selectFreet+` WHERE f.id = $1`, id)

	var f PopulatedFreet
	err := row.Scan(&f.ID, &f.AuthorID, &f.Content, &f.DateCreated, &f.AuthorUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get freet: %w", err)
	}
	return &f, nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]PopulatedFreet, error) {
	rows, err := r.db.Query(ctx, selectFreet+` ORDER BY f.date_created DESC`)
	if err != nil {
		return nil, fmt.Errorf("list freets: %w", err)
	}
	return scanFreets(rows)
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]PopulatedFreet, error) {
	rows, err := r.db.Query(ctx, selectFreet+` WHERE f.author_id = $1 ORDER BY f.date_created DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list freets by author: %w", err)
	}
	return scanFreets(rows)
}

// DeleteAllForUser removes the user's freets along with any
// endorsements referencing them, so the author row can be deleted
// without violating foreign keys.
func (r *postgresRepository) DeleteAllForUser(ctx context.Context, authorID string) error {
	const dropEndorsements = `
		DELETE FROM endorsements
		WHERE freet_id IN (SELECT id FROM freets WHERE author_id = $1)
	`
	if _, err := r.db.Exec(ctx, dropEndorsements, authorID); err != nil {
		return fmt.Errorf("delete endorsements of user's freets: %w", err)
	}

	const dropFreets = `DELETE FROM freets WHERE author_id = $1`
	if _, err := r.db.Exec(ctx, dropFreets, authorID); err != nil {
		return fmt.Errorf("delete user's freets: %w", err)
	}
	return nil
}

func scanFreets(rows *sql.Rows) ([]PopulatedFreet, error) {
	defer rows.Close()

	freets := []PopulatedFreet{}
	for rows.Next() {
		var f PopulatedFreet
		if err := rows.Scan(&f.ID, &f.AuthorID, &f.Content, &f.DateCreated, &f.AuthorUsername); err != nil {
			return nil, fmt.Errorf("scan freet: %w", err)
		}
		freets = append(freets, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate freets: %w", err)
	}
	return freets, nil
}
