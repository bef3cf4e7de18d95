// Package events publishes engagement events (follows, endorsements,
// account cascades) to Kafka for downstream consumers such as
// notification fan-out. The producer is optional; when KAFKA_BROKERS is
// unset the services run without one.
package events

import "time"

// Event types emitted by the engagement services.
const (
	TypeFollow      = "follow"
	TypeUnfollow    = "unfollow"
	TypeEndorse     = "endorse"
	TypeUnendorse   = "unendorse"
	TypeUserDeleted = "user_deleted"
)

// Event is a single engagement event. Actor is the user id performing
// the action; Subject is the affected user or freet id.
type Event struct {
	Type       string    `json:"type"`
	Actor      string    `json:"actor"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is implemented by the Kafka producer. Services hold it as an
// optional dependency and skip publishing when it is nil.
type Publisher interface {
	Publish(event Event) error
}
