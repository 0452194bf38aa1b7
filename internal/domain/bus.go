package domain

import (
	"context"
)

// Event topics published by the scoring pipeline.
const (
	// TopicTransactionScored carries every completed fraud-check verdict.
	TopicTransactionScored = "transaction.scored"

	// TopicFraudAlert carries verdicts that banded to fraud_confirm.
	TopicFraudAlert = "fraud.alert"
)

// EventBus is the interface for event-driven communication between the
// orchestrator and async consumers. Backed by Go channels (embedded) or
// NATS (deployed).
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers a handler for a topic. Returns a subscription
	// that can be used to unsubscribe.
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (Subscription, error)

	// Health check.
	Ping(ctx context.Context) error

	// Lifecycle.
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message is an event envelope.
type Message struct {
	ID        string            `json:"id"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// Subscription is an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats".
	Type string

	// Channel bus settings.
	ChannelBufferSize int

	// NATS settings.
	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds
}
