// Package event provides the in-process publish/subscribe bus that modules
// use to signal library changes without coupling to each other.
package event

import (
	"context"
	"sync"

	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ provider.EventBus = (*Bus)(nil)

type subscription struct {
	id      uint64
	handler provider.EventHandler
}

// Bus is a synchronous in-process event bus. Handlers for a topic run in
// registration order; a panicking handler is recovered and logged so it
// cannot take down the publisher or later handlers.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string][]subscription
	all    []subscription
	logger *zap.Logger
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers a handler for a topic. The returned function removes
// the subscription.
func (b *Bus) Subscribe(topic string, h provider.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = removeSub(b.topics[topic], id)
	}
}

// SubscribeAll registers a handler for every topic. The returned function
// removes the subscription.
func (b *Bus) SubscribeAll(h provider.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = removeSub(b.all, id)
	}
}

// Publish delivers the event synchronously to all matching handlers.
// Publishing with no subscribers is not an error.
func (b *Bus) Publish(ctx context.Context, e provider.Event) error {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.topics[e.Topic])+len(b.all))
	subs = append(subs, b.topics[e.Topic]...)
	subs = append(subs, b.all...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.invoke(ctx, s, e)
	}
	return nil
}

// PublishAsync delivers the event on a separate goroutine per handler.
func (b *Bus) PublishAsync(ctx context.Context, e provider.Event) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.topics[e.Topic])+len(b.all))
	subs = append(subs, b.topics[e.Topic]...)
	subs = append(subs, b.all...)
	b.mu.RUnlock()

	for _, s := range subs {
		go b.invoke(ctx, s, e)
	}
}

// invoke runs a single handler with panic isolation.
func (b *Bus) invoke(ctx context.Context, s subscription, e provider.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(ctx, e)
}

func removeSub(subs []subscription, id uint64) []subscription {
	for i := range subs {
		if subs[i].id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
