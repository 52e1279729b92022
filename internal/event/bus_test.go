package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	var received provider.Event

	bus.Subscribe(provider.TopicLibraryUpdated, func(ctx context.Context, e provider.Event) {
		received = e
	})

	event := provider.Event{
		Topic:     provider.TopicLibraryUpdated,
		Source:    "steam",
		Timestamp: time.Now(),
		Payload:   provider.LibraryUpdatedEvent{Source: "steam", Entries: 3},
	}

	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if received.Topic != provider.TopicLibraryUpdated {
		t.Errorf("received.Topic = %q, want %q", received.Topic, provider.TopicLibraryUpdated)
	}
	payload, ok := received.Payload.(provider.LibraryUpdatedEvent)
	if !ok {
		t.Fatalf("received.Payload type = %T, want LibraryUpdatedEvent", received.Payload)
	}
	if payload.Entries != 3 {
		t.Errorf("payload.Entries = %d, want 3", payload.Entries)
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	bus.SubscribeAll(func(ctx context.Context, e provider.Event) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(context.Background(), provider.Event{Topic: provider.TopicLibraryUpdated})
	bus.Publish(context.Background(), provider.Event{Topic: provider.TopicPanelRefreshed})

	if got := atomic.LoadInt32(&count); got != 2 {
		t.Errorf("SubscribeAll handler called %d times, want 2", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	unsub := bus.Subscribe("test", func(ctx context.Context, e provider.Event) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(context.Background(), provider.Event{Topic: "test"})
	unsub()
	bus.Publish(context.Background(), provider.Event{Topic: "test"})

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", got)
	}
}

func TestUnsubscribeAll(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	unsub := bus.SubscribeAll(func(ctx context.Context, e provider.Event) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(context.Background(), provider.Event{Topic: "test"})
	unsub()
	bus.Publish(context.Background(), provider.Event{Topic: "test"})

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("handler called %d times after unsubscribe, want 1", got)
	}
}

func TestPublishAsync(t *testing.T) {
	bus := NewBus(testLogger())
	var wg sync.WaitGroup
	var count int32

	wg.Add(2)
	bus.Subscribe(provider.TopicPanelRefreshed, func(ctx context.Context, e provider.Event) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})
	bus.SubscribeAll(func(ctx context.Context, e provider.Event) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})

	bus.PublishAsync(context.Background(), provider.Event{Topic: provider.TopicPanelRefreshed})

	wg.Wait()
	if got := atomic.LoadInt32(&count); got != 2 {
		t.Errorf("async handlers called %d times, want 2", got)
	}
}

func TestHandlerPanicRecovery(t *testing.T) {
	bus := NewBus(testLogger())
	var count int32

	bus.Subscribe("panic.test", func(ctx context.Context, e provider.Event) {
		panic("test panic")
	})
	bus.Subscribe("panic.test", func(ctx context.Context, e provider.Event) {
		atomic.AddInt32(&count, 1)
	})

	// Should not panic, and second handler should still run.
	bus.Publish(context.Background(), provider.Event{Topic: "panic.test"})

	if got := atomic.LoadInt32(&count); got != 1 {
		t.Errorf("second handler called %d times, want 1", got)
	}
}

func TestNoSubscribersOK(t *testing.T) {
	bus := NewBus(testLogger())

	if err := bus.Publish(context.Background(), provider.Event{Topic: "empty"}); err != nil {
		t.Fatalf("Publish() with no subscribers error = %v", err)
	}
}
