package crosspost

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/seo"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAnnouncer struct {
	mu   sync.Mutex
	seen []Announcement
	fail map[string]error
}

func (f *fakeAnnouncer) Announce(ctx context.Context, a Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("announce called without a deadline")
	}
	f.seen = append(f.seen, a)
	return f.fail[a.Platform]
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

var site = seo.Site{Name: "Inkwell", BaseURL: "https://blog.example.com"}

func publishedPost() db.Post {
	return db.Post{
		ID:          7,
		Title:       "Hello World",
		Excerpt:     "First",
		Category:    "News",
		Slug:        "hello-world",
		Published:   true,
		PublishedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatcherAnnouncesToEveryPlatform(t *testing.T) {
	fake := &fakeAnnouncer{}
	d := NewDispatcher(fake, []string{" Facebook", "twitter", "", "linkedin"}, site, time.Second, nil)

	d.PostPublished(publishedPost())
	d.Wait()

	if len(fake.seen) != 3 {
		t.Fatalf("expected 3 announcements, got %d", len(fake.seen))
	}
	platforms := make([]string, 0, 3)
	ids := map[string]bool{}
	for _, a := range fake.seen {
		platforms = append(platforms, a.Platform)
		ids[a.EventID] = true
		if a.URL != "https://blog.example.com/blog/hello-world" || a.Title != "Hello World" {
			t.Fatalf("unexpected announcement %+v", a)
		}
	}
	sort.Strings(platforms)
	if platforms[0] != "facebook" || platforms[1] != "linkedin" || platforms[2] != "twitter" {
		t.Fatalf("unexpected platforms %v", platforms)
	}
	if len(ids) != 3 {
		t.Fatalf("event ids must be unique, got %v", ids)
	}
}

func TestDispatcherLogsFailuresWithoutPropagating(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	fake := &fakeAnnouncer{fail: map[string]error{"twitter": errors.New("rate limited")}}
	d := NewDispatcher(fake, []string{"facebook", "twitter"}, site, 0, zap.New(core))

	d.PostPublished(publishedPost())
	d.Wait()

	failed := logs.FilterMessage("cross-post failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected 1 failure log, got %d", len(failed))
	}
	if got := failed[0].ContextMap()["platform"]; got != "twitter" {
		t.Fatalf("failure logged for %v", got)
	}
	if sent := logs.FilterMessage("cross-post sent").Len(); sent != 1 {
		t.Fatalf("expected 1 success log, got %d", sent)
	}
}

func TestKafkaAnnouncerWritesToPlatformTopic(t *testing.T) {
	w := &fakeWriter{}
	k := newKafkaAnnouncer(w, "inkwell.crosspost.", nil)

	a := Announcement{EventID: "e-1", Platform: "linkedin", PostID: 7, Slug: "hello-world", Title: "Hello World"}
	if err := k.Announce(context.Background(), a); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "inkwell.crosspost.linkedin" || string(msg.Key) != "hello-world" {
		t.Fatalf("unexpected message routing: topic=%q key=%q", msg.Topic, msg.Key)
	}
	var decoded Announcement
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.EventID != "e-1" || decoded.PostID != 7 {
		t.Fatalf("unexpected payload %+v", decoded)
	}

	w.err = errors.New("broker down")
	if err := k.Announce(context.Background(), a); err == nil {
		t.Fatalf("expected write error")
	}
	if err := k.Close(); err != nil || !w.closed {
		t.Fatalf("close: %v closed=%v", err, w.closed)
	}
}
