package endorse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lam-kelly/fritter/internal/database"
)

// Repository handles endorsement persistence. List reads resolve the
// endorser to a username via a join.
type Repository interface {
	Insert(ctx context.Context, e Endorsement) error
	Delete(ctx context.Context, endorserID, freetID string) (int64, error)
	Exists(ctx context.Context, endorserID, freetID string) (bool, error)
	ListByFreet(ctx context.Context, freetID string) ([]PopulatedEndorsement, error)
	ListByEndorser(ctx context.Context, endorserID string) ([]PopulatedEndorsement, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	db database.Service
}

// NewRepository creates a postgres-backed endorsement repository
func NewRepository(db database.Service) Repository {
	return &postgresRepository{db: db}
}

const selectEndorsement = `
	SELECT e.id, e.endorser_id, e.freet_id, e.created_at, u.username
	FROM endorsements e
	JOIN users u ON u.id = e.endorser_id
`

func (r *postgresRepository) Insert(ctx context.Context, e Endorsement) error {
	const q = `
		INSERT INTO endorsements (id, endorser_id, freet_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.Exec(ctx, q, e.ID, e.EndorserID, e.FreetID, e.CreatedAt); err != nil {
		return fmt.Errorf("insert endorsement: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, endorserID, freetID string) (int64, error) {
	const q = `DELETE FROM endorsements WHERE endorser_id = $1 AND freet_id = $2`

	res, err := r.db.Exec(ctx, q, endorserID, freetID)
	if err != nil {
		return 0, fmt.Errorf("delete endorsement: %w", err)
	}
	return res.RowsAffected()
}

func (r *postgresRepository) Exists(ctx context.Context, endorserID, freetID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM endorsements
			WHERE endorser_id = $1 AND freet_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, q, endorserID, freetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check endorsement: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListByFreet(ctx context.Context, freetID string) ([]PopulatedEndorsement, error) {
	rows, err := r.db.Query(ctx, selectEndorsement+` WHERE e.freet_id = $1`, freetID)
	if err != nil {
		return nil, fmt.Errorf("list endorsers: %w", err)
	}
	return scanEndorsements(rows)
}

func (r *postgresRepository) ListByEndorser(ctx context.Context, endorserID string) ([]PopulatedEndorsement, error) {
	rows, err := r.db.Query(ctx, selectEndorsement+` WHERE e.endorser_id = $1`, endorserID)
	if err != nil {
		return nil, fmt.Errorf("list endorsed freets: %w", err)
	}
	return scanEndorsements(rows)
}

func (r *postgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM endorsements WHERE endorser_id = $1`

	if _, err := r.db.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("cascade delete endorsements: %w", err)
	}
	return nil
}

func scanEndorsements(rows *sql.Rows) ([]PopulatedEndorsement, error) {
	defer rows.Close()

	endorsements := []PopulatedEndorsement{}
	for rows.Next() {
		var e PopulatedEndorsement
		err := rows.Scan(&e.ID, &e.EndorserID, &e.FreetID, &e.CreatedAt, &e.EndorserUsername)
		if err != nil {
			return nil, fmt.Errorf("scan endorsement: %w", err)
		}
		endorsements = append(endorsements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate endorsements: %w", err)
	}
	return endorsements, nil
}
