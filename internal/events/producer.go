package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Producer publishes engagement events to Kafka
type Producer struct {
	producer *kafka.Producer
	config   *Config
	logger   *slog.Logger
}

// NewProducer creates a new Kafka producer with idempotence enabled
func NewProducer(config *Config, logger *slog.Logger) (*Producer, error) {
	producerConfig := &kafka.ConfigMap{
		"bootstrap.servers":                     config.Brokers,
		"enable.idempotence":                    config.EnableIdempotence,
		"acks":                                  config.Acks,
		"max.in.flight.requests.per.connection": 5, // required for idempotence
	}

	p, err := kafka.NewProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	producer := &Producer{
		producer: p,
		config:   config,
		logger:   logger,
	}

	go producer.handleDeliveryReports()

	logger.Info("Kafka producer initialized",
		"brokers", config.Brokers,
		"topic", config.Topic)

	return producer, nil
}

// Publish publishes an engagement event (non-blocking, delivery reports
// are handled in the background)
func (p *Producer) Publish(event Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.config.Topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.Actor),
		Value: jsonData,
	}

	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	p.logger.Debug("Engagement event published",
		"type", event.Type,
		"actor", event.Actor)

	return nil
}

// handleDeliveryReports processes asynchronous delivery reports
func (p *Producer) handleDeliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				p.logger.Error("Delivery failed",
					"topic", *ev.TopicPartition.Topic,
					"error", ev.TopicPartition.Error)
			}
		}
	}
}

// Close flushes pending messages and closes the producer
func (p *Producer) Close() {
	remaining := p.producer.Flush(10000)
	if remaining > 0 {
		p.logger.Error("Some messages were not delivered", "count", remaining)
	}

	p.producer.Close()
	p.logger.Info("Kafka producer closed")
}
