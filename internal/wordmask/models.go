package wordmask

import "time"

// Rule is a stored word-mask: one censored word and its replacement,
// owned by one user.
type Rule struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CensoredWord    string    `json:"censored_word"`
	ReplacementWord string    `json:"replacement_word"`
	CreatedAt       time.Time `json:"created_at"`
}

// Response is the client-facing shape of a word-mask rule. The userId
// field carries the owner's username, matching the published API.
type Response struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	CensoredWord    string `json:"censoredWord"`
	ReplacementWord string `json:"replacementWord"`
}

// NewResponse maps a rule to its client-facing shape.
func NewResponse(r Rule, ownerUsername string) Response {
	return Response{
		ID:              r.ID,
		UserID:          ownerUsername,
		CensoredWord:    r.CensoredWord,
		ReplacementWord: r.ReplacementWord,
	}
}

// CreateRequest is the payload for adding a word-mask rule
type CreateRequest struct {
	CensoredWord    string `json:"censoredWord"`
	ReplacementWord string `json:"replacementWord"`
}

// UpdateRequest is the payload for changing a rule's replacement word
type UpdateRequest struct {
	ReplacementWord string `json:"replacementWord"`
}
