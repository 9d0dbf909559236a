package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func receive(t *testing.T, sub *Subscription) ViewUpdate {
	t.Helper()
	select {
	case update, ok := <-sub.Updates():
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return update
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for update")
	}
	return ViewUpdate{}
}

func TestHubDeliversToEverySubscriberOfThePost(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(1)
	b := hub.Subscribe(1)
	other := hub.Subscribe(2)
	defer a.Close()
	defer b.Close()
	defer other.Close()

	for i := uint64(1); i <= 3; i++ {
		if err := hub.Publish(context.Background(), ViewUpdate{PostID: 1, Count: i}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	for _, sub := range []*Subscription{a, b} {
		for i := uint64(1); i <= 3; i++ {
			if got := receive(t, sub).Count; got != i {
				t.Fatalf("expected count %d, got %d", i, got)
			}
		}
	}

	select {
	case update := <-other.Updates():
		t.Fatalf("subscriber of another post received %+v", update)
	default:
	}
}

func TestHubCloseDetachesAndIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(7)
	if hub.Subscribers(7) != 1 {
		t.Fatalf("expected 1 subscriber")
	}

	sub.Close()
	sub.Close()

	if hub.Subscribers(7) != 0 {
		t.Fatalf("expected subscription to be removed")
	}
	if _, ok := <-sub.Updates(); ok {
		t.Fatalf("expected closed channel")
	}
	if err := hub.Publish(context.Background(), ViewUpdate{PostID: 7, Count: 1}); err != nil {
		t.Fatalf("publish after close: %v", err)
	}
}

func TestHubSlowSubscriberConvergesOnLatest(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(3)
	defer sub.Close()

	const total = subscriptionBuffer * 3
	for i := uint64(1); i <= total; i++ {
		_ = hub.Publish(context.Background(), ViewUpdate{PostID: 3, Count: i})
	}

	var last uint64
	for len(sub.Updates()) > 0 {
		last = receive(t, sub).Count
	}
	if last != total {
		t.Fatalf("expected latest count %d, got %d", total, last)
	}
}

func TestHubDropsOutOfOrderUpdates(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(9)
	defer sub.Close()

	for _, count := range []uint64{6, 5, 6, 7} {
		_ = hub.Publish(context.Background(), ViewUpdate{PostID: 9, Count: count})
	}

	if got := receive(t, sub).Count; got != 6 {
		t.Fatalf("expected 6 first, got %d", got)
	}
	if got := receive(t, sub).Count; got != 7 {
		t.Fatalf("expected stale 5 and repeated 6 to be dropped, got %d", got)
	}
	if n := len(sub.Updates()); n != 0 {
		t.Fatalf("expected no further updates, %d pending", n)
	}

	late := hub.Subscribe(9)
	defer late.Close()
	_ = hub.Publish(context.Background(), ViewUpdate{PostID: 9, Count: 3})
	if got := receive(t, late).Count; got != 3 {
		t.Fatalf("new subscriber should accept any first count, got %d", got)
	}
	if n := len(sub.Updates()); n != 0 {
		t.Fatalf("older subscriber should drop count 3, %d pending", n)
	}
}

func TestRedisBrokerRelaysThroughRedis(t *testing.T) {
	server := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newBroker := func() (*RedisBroker, *redis.Client) {
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		broker := NewRedisBroker(client, "test:views", NewHub(), nil)
		if err := broker.Start(ctx); err != nil {
			t.Fatalf("start broker: %v", err)
		}
		return broker, client
	}

	publisher, pubClient := newBroker()
	defer pubClient.Close()
	defer publisher.Close()
	listener, listenClient := newBroker()
	defer listenClient.Close()
	defer listener.Close()

	sub := listener.Subscribe(11)
	defer sub.Close()

	if err := publisher.Publish(ctx, ViewUpdate{PostID: 11, Count: 5}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	update := receive(t, sub)
	if update.PostID != 11 || update.Count != 5 {
		t.Fatalf("unexpected update %+v", update)
	}
}

func TestRedisBrokerCloseWithoutStart(t *testing.T) {
	broker := NewRedisBroker(nil, "x", NewHub(), nil)
	if err := broker.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
