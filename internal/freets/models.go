package freets

import "time"

// Freet is a stored post. Author is referenced by id only; the username
// is resolved at read time.
type Freet struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Content     string    `json:"content"`
	DateCreated time.Time `json:"date_created"`
}

// PopulatedFreet is a freet with its author reference resolved.
type PopulatedFreet struct {
	Freet
	AuthorUsername string
}

// Response is the client-facing shape of a freet. The embedded author
// record never leaks; only the username does.
type Response struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	DateCreated time.Time `json:"dateCreated"`
}

// NewResponse maps a populated freet to its client-facing shape.
func NewResponse(f PopulatedFreet) Response {
	return Response{
		ID:          f.ID,
		Author:      f.AuthorUsername,
		Content:     f.Content,
		DateCreated: f.DateCreated,
	}
}

// CreateRequest is the payload for posting a freet
type CreateRequest struct {
	Content string `json:"content"`
}
