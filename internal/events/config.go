package events

import (
	"fmt"
	"os"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers           string
	Topic             string
	EnableIdempotence bool
	Acks              string
}

// LoadConfig loads Kafka configuration from environment variables.
// Returns an error when KAFKA_BROKERS is unset; the caller decides
// whether that disables publishing or aborts startup.
func LoadConfig() (*Config, error) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	topic := os.Getenv("KAFKA_TOPIC_ENGAGEMENT_EVENTS")
	if topic == "" {
		topic = "engagement-events"
	}

	return &Config{
		Brokers:           brokers,
		Topic:             topic,
		EnableIdempotence: true,
		Acks:              "all",
	}, nil
}
