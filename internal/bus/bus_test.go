package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

func TestChannelBus(t *testing.T) {
	eventBus := NewChannelBus(100)
	defer eventBus.Close()

	ctx := context.Background()

	t.Run("PublishAndSubscribe", func(t *testing.T) {
		var received atomic.Bool
		var receivedMsg *domain.Message

		var wg sync.WaitGroup
		wg.Add(1)

		_, err := eventBus.Subscribe(ctx, domain.TopicTransactionScored, func(ctx context.Context, msg *domain.Message) error {
			receivedMsg = msg
			received.Store(true)
			wg.Done()
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}

		// Allow subscription to be active
		time.Sleep(10 * time.Millisecond)

		err = eventBus.Publish(ctx, domain.TopicTransactionScored, []byte("hello"))
		if err != nil {
			t.Fatalf("publish failed: %v", err)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}

		if !received.Load() {
			t.Error("message not received")
		}

		if string(receivedMsg.Payload) != "hello" {
			t.Errorf("expected payload 'hello', got '%s'", string(receivedMsg.Payload))
		}
		if receivedMsg.Topic != domain.TopicTransactionScored {
			t.Errorf("unexpected topic: %s", receivedMsg.Topic)
		}
	})

	t.Run("TopicIsolation", func(t *testing.T) {
		var alertCount atomic.Int32

		_, err := eventBus.Subscribe(ctx, domain.TopicFraudAlert, func(ctx context.Context, msg *domain.Message) error {
			alertCount.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}

		time.Sleep(10 * time.Millisecond)

		if err := eventBus.Publish(ctx, domain.TopicTransactionScored, []byte("scored")); err != nil {
			t.Fatalf("publish failed: %v", err)
		}

		time.Sleep(50 * time.Millisecond)
		if alertCount.Load() != 0 {
			t.Errorf("alert subscriber received a scored-topic message")
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		var count atomic.Int32

		sub, err := eventBus.Subscribe(ctx, "test.unsub", func(ctx context.Context, msg *domain.Message) error {
			count.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}

		if err := sub.Unsubscribe(); err != nil {
			t.Fatalf("unsubscribe failed: %v", err)
		}

		time.Sleep(10 * time.Millisecond)
		_ = eventBus.Publish(ctx, "test.unsub", []byte("after"))
		time.Sleep(50 * time.Millisecond)

		if count.Load() != 0 {
			t.Errorf("expected no deliveries after unsubscribe, got %d", count.Load())
		}
	})
}

func TestChannelBusClosed(t *testing.T) {
	eventBus := NewChannelBus(10)
	if err := eventBus.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	ctx := context.Background()

	if err := eventBus.Publish(ctx, "topic", nil); err == nil {
		t.Error("expected error publishing to a closed bus")
	}
	if _, err := eventBus.Subscribe(ctx, "topic", nil); err == nil {
		t.Error("expected error subscribing to a closed bus")
	}
	if err := eventBus.Ping(ctx); err == nil {
		t.Error("expected ping failure on a closed bus")
	}

	// Closing twice is a no-op.
	if err := eventBus.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestBusFactory(t *testing.T) {
	b, err := New(domain.EventBusConfig{Type: "channel", ChannelBufferSize: 10})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	defer b.Close()

	if _, err := New(domain.EventBusConfig{Type: "kafka"}); err == nil {
		t.Error("expected error for unsupported bus type")
	}
}
