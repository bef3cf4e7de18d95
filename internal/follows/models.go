package follows

import "time"

// Edge is a stored directed follow relationship. Both endpoints are
// referenced by user id only.
type Edge struct {
	ID         string    `json:"id"`
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// PopulatedEdge is an edge with both endpoints resolved to usernames.
type PopulatedEdge struct {
	Edge
	FollowerUsername string
	FolloweeUsername string
}

// Response is the client-facing shape of a follow edge: the id plus the
// two usernames. Embedded user records never leak.
type Response struct {
	ID       string `json:"id"`
	Follower string `json:"follower"`
	Followee string `json:"followee"`
}

// NewResponse maps a populated edge to its client-facing shape.
func NewResponse(e PopulatedEdge) Response {
	return Response{
		ID:       e.ID,
		Follower: e.FollowerUsername,
		Followee: e.FolloweeUsername,
	}
}

// CreateRequest is the payload for following a user
type CreateRequest struct {
	Followee string `json:"followee"`
}

// ListMode discriminates the two mutually exclusive listing queries.
type ListMode int

const (
	// ListFollowees lists edges where the named user is the follower
	ListFollowees ListMode = iota
	// ListFollowers lists edges where the named user is the followee
	ListFollowers
)

// ListQuery is the decoded form of GET /api/follows. Exactly one of the
// two query parameters must have been supplied.
type ListQuery struct {
	Mode     ListMode
	Username string
}
