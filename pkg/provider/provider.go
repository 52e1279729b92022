package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route represents an HTTP route exposed by a provider.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Provider defines the interface that all unideck modules must implement.
type Provider interface {
	// Name returns the provider's unique identifier (e.g., "steam", "panel").
	Name() string

	// Version returns the provider's semantic version.
	Version() string

	// Init initializes the provider with configuration and logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start begins the provider's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the provider.
	Stop() error
}

// Event is a message published on the event bus.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// EventHandler processes a published event.
type EventHandler func(ctx context.Context, e Event)

// EventBus decouples event producers from the concrete bus implementation.
type EventBus interface {
	// Publish delivers the event synchronously to all matching handlers.
	Publish(ctx context.Context, e Event) error

	// PublishAsync delivers the event without blocking the publisher.
	PublishAsync(ctx context.Context, e Event)

	// Subscribe registers a handler for a topic and returns an
	// unsubscribe function.
	Subscribe(topic string, h EventHandler) func()

	// SubscribeAll registers a handler for every topic and returns an
	// unsubscribe function.
	SubscribeAll(h EventHandler) func()
}
