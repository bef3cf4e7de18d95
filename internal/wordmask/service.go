package wordmask

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lam-kelly/fritter/internal/users"
)

var (
	// ErrInvalidWord is returned when the censored word is empty or blank
	ErrInvalidWord = errors.New("censored word must be nonempty")
	// ErrDuplicateRule is returned when the user already censors the word
	ErrDuplicateRule = errors.New("word is already censored")
	// ErrNotFound is returned when the rule id does not resolve
	ErrNotFound = errors.New("word mask not found")
	// ErrForbidden is returned when the rule belongs to another user
	ErrForbidden = errors.New("not the owner of this word mask")
)

// UserDirectory is the slice of the user service this store needs for
// owner resolution in responses.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Service defines word-mask operations
type Service interface {
	Create(ctx context.Context, userID, censoredWord, replacementWord string) (*Response, error)
	Update(ctx context.Context, userID, ruleID, replacementWord string) (*Response, error)
	Delete(ctx context.Context, userID, ruleID string) error
	ListForUser(ctx context.Context, userID string) ([]Response, error)
	CascadeDeleteForUser(ctx context.Context, userID string) error
}

type service struct {
	repo Repository
	udir UserDirectory
}

// NewService creates a new word-mask service
func NewService(repo Repository, udir UserDirectory) Service {
	return &service{repo: repo, udir: udir}
}

func (s *service) Create(ctx context.Context, userID, censoredWord, replacementWord string) (*Response, error) {
	if strings.TrimSpace(censoredWord) == "" {
		return nil, ErrInvalidWord
	}

	// Duplicate detection matches the stored word exactly; only
	// all-whitespace input is rejected above, the word itself is kept
	// as submitted.
	existing, err := s.repo.FindByOwnerAndWord(ctx, userID, censoredWord)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check word mask: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateRule
	}

	rule := Rule{
		ID:              uuid.New().String(),
		UserID:          userID,
		CensoredWord:    censoredWord,
		ReplacementWord: replacementWord,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, rule); err != nil {
		return nil, fmt.Errorf("create word mask: %w", err)
	}

	return s.shape(ctx, rule)
}

func (s *service) Update(ctx context.Context, userID, ruleID, replacementWord string) (*Response, error) {
	rule, err := s.getOwned(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rule.ID, replacementWord); err != nil {
		return nil, fmt.Errorf("update word mask: %w", err)
	}

	rule.ReplacementWord = replacementWord
	return s.shape(ctx, *rule)
}

func (s *service) Delete(ctx context.Context, userID, ruleID string) error {
	rule, err := s.getOwned(ctx, userID, ruleID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, rule.ID); err != nil {
		return fmt.Errorf("delete word mask: %w", err)
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]Response, error) {
	rules, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return []Response{}, nil
	}

	// All rules share one owner, resolve the username once.
	owner, err := s.udir.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	shaped := make([]Response, 0, len(rules))
	for _, rule := range rules {
		shaped = append(shaped, NewResponse(rule, owner.Username))
	}
	return shaped, nil
}

// CascadeDeleteForUser removes the rules the user owns. Rules belonging
// to other users never reference the deleted account, so owner scope is
// the whole cleanup.
func (s *service) CascadeDeleteForUser(ctx context.Context, userID string) error {
	return s.repo.DeleteAllForUser(ctx, userID)
}

// getOwned resolves a rule id and checks ownership. Existence is
// checked before ownership, so an unknown id reports not-found even to
// a non-owner.
func (s *service) getOwned(ctx context.Context, userID, ruleID string) (*Rule, error) {
	rule, err := s.repo.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get word mask: %w", err)
	}
	if rule.UserID != userID {
		return nil, ErrForbidden
	}
	return rule, nil
}

func (s *service) shape(ctx context.Context, rule Rule) (*Response, error) {
	owner, err := s.udir.GetByID(ctx, rule.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	resp := NewResponse(rule, owner.Username)
	return &resp, nil
}

// Apply rewrites text by the given rules. Matching is on whole
// whitespace-separated words, exact and case-sensitive; substrings
// inside longer words are left alone.
func Apply(rules []Rule, text string) string {
	if len(rules) == 0 {
		return text
	}

	replacements := make(map[string]string, len(rules))
	for _, rule := range rules {
		replacements[rule.CensoredWord] = rule.ReplacementWord
	}

	words := strings.Split(text, " ")
	for i, word := range words {
		if replacement, ok := replacements[word]; ok {
			words[i] = replacement
		}
	}
	return strings.Join(words, " ")
}
