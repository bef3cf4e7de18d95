package wordmask

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lam-kelly/fritter/internal/database"
)

// Repository handles word-mask rule persistence
type Repository interface {
	Insert(ctx context.Context, r Rule) error
	GetByID(ctx context.Context, id string) (*Rule, error)
	FindByOwnerAndWord(ctx context.Context, userID, censoredWord string) (*Rule, error)
	Update(ctx context.Context, id, replacementWord string) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, userID string) ([]Rule, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	db database.Service
}

// NewRepository creates a postgres-backed word-mask repository
func NewRepository(db database.Service) Repository {
	return &postgresRepository{db: db}
}

const selectRule = `
	SELECT id, user_id, censored_word, replacement_word, created_at
	FROM word_masks
`

func (r *postgresRepository) Insert(ctx context.Context, rule Rule) error {
	const q = `
		INSERT INTO word_masks (id, user_id, censored_word, replacement_word, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, q, rule.ID, rule.UserID, rule.CensoredWord,
		rule.ReplacementWord, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert word mask: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Rule, error) {
	row := r.db.QueryRow(ctx, selectRule+` WHERE id = $1`, id)
	return scanRule(row)
}

func (r *postgresRepository) FindByOwnerAndWord(ctx context.Context, userID, censoredWord string) (*Rule, error) {
	row := r.db.QueryRow(ctx, selectRule+` WHERE user_id = $1 AND censored_word = $2`,
		userID, censoredWord)
	return scanRule(row)
}

func (r *postgresRepository) Update(ctx context.Context, id, replacementWord string) error {
	const q = `UPDATE word_masks SET replacement_word = $2 WHERE id = $1`

	if _, err := r.db.Exec(ctx, q, id, replacementWord); err != nil {
		return fmt.Errorf("update word mask: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM word_masks WHERE id = $1`

	if _, err := r.db.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("delete word mask: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, userID string) ([]Rule, error) {
	rows, err := r.db.Query(ctx, selectRule+` WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list word masks: %w", err)
	}
	defer rows.Close()

	rules := []Rule{}
	for rows.Next() {
		var rule Rule
		err := rows.Scan(&rule.ID, &rule.UserID, &rule.CensoredWord,
			&rule.ReplacementWord, &rule.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan word mask: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate word masks: %w", err)
	}
	return rules, nil
}

// DeleteAllForUser removes every rule the user owns.
func (r *postgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM word_masks WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("cascade delete word masks: %w", err)
	}
	return nil
}

func scanRule(row *sql.Row) (*Rule, error) {
	var rule Rule
	err := row.Scan(&rule.ID, &rule.UserID, &rule.CensoredWord,
		&rule.ReplacementWord, &rule.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
