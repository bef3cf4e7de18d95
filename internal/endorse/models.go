package endorse

import "time"

// Endorsement is a stored (endorser, freet) pair.
type Endorsement struct {
	ID         string    `json:"id"`
	EndorserID string    `json:"endorser_id"`
	FreetID    string    `json:"freet_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// PopulatedEndorsement is an endorsement with the endorser resolved to
// a username. The freet stays an id; that is all the clients need.
type PopulatedEndorsement struct {
	Endorsement
	EndorserUsername string
}

// Response is the client-facing shape of an endorsement.
type Response struct {
	ID       string `json:"id"`
	Endorser string `json:"endorser"`
	Freet    string `json:"freet"`
}

// NewResponse maps a populated endorsement to its client-facing shape.
func NewResponse(e PopulatedEndorsement) Response {
	return Response{
		ID:       e.ID,
		Endorser: e.EndorserUsername,
		Freet:    e.FreetID,
	}
}

// CreateRequest is the payload for endorsing a freet
type CreateRequest struct {
	FreetID string `json:"freetId"`
}

// ListMode discriminates the two mutually exclusive listing queries.
type ListMode int

const (
	// ListByFreet lists endorsements of one freet
	ListByFreet ListMode = iota
	// ListByEndorser lists endorsements made by one user
	ListByEndorser
)

// ListQuery is the decoded form of GET /api/endorse. Exactly one of the
// two query parameters must have been supplied.
type ListQuery struct {
	Mode     ListMode
	FreetID  string
	Endorser string
}
