// Package crosspost announces newly published posts to external platforms.
// Announcing is best effort: failures are logged and never reach the publisher.
package crosspost

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/seo"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Announcement is the payload handed to each platform.
type Announcement struct {
	EventID     string    `json:"event_id"`
	Platform    string    `json:"platform"`
	PostID      uint      `json:"post_id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Category    string    `json:"category"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// Announcer delivers one announcement to one platform.
type Announcer interface {
	Announce(ctx context.Context, a Announcement) error
}

// messageWriter is the subset of *kafka.Writer the announcer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAnnouncer writes announcements as JSON to "<prefix>.<platform>" topics,
// where a per-platform worker picks them up.
type KafkaAnnouncer struct {
	writer messageWriter
	prefix string
	logger *zap.Logger
}

func NewKafkaAnnouncer(brokers []string, topicPrefix string, logger *zap.Logger) *KafkaAnnouncer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaAnnouncer(writer, topicPrefix, logger)
}

func newKafkaAnnouncer(w messageWriter, topicPrefix string, logger *zap.Logger) *KafkaAnnouncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaAnnouncer{writer: w, prefix: strings.TrimSuffix(topicPrefix, "."), logger: logger}
}

// Topic returns the topic an announcement for platform is written to.
func (k *KafkaAnnouncer) Topic(platform string) string {
	if k.prefix == "" {
		return platform
	}
	return k.prefix + "." + platform
}

func (k *KafkaAnnouncer) Announce(ctx context.Context, a Announcement) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	topic := k.Topic(a.Platform)
	k.logger.Debug("sending announcement", zap.String("topic", topic), zap.String("event_id", a.EventID))
	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(a.Slug),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write %s: %w", topic, err)
	}
	return nil
}

func (k *KafkaAnnouncer) Close() error {
	return k.writer.Close()
}

// Dispatcher fans a published post out to every configured platform.
type Dispatcher struct {
	announcer Announcer
	platforms []string
	site      seo.Site
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(announcer Announcer, platforms []string, site seo.Site, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cleaned := make([]string, 0, len(platforms))
	for _, p := range platforms {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return &Dispatcher{
		announcer: announcer,
		platforms: cleaned,
		site:      site,
		timeout:   timeout,
		logger:    logger,
	}
}

// PostPublished starts one announcement per platform and returns immediately.
func (d *Dispatcher) PostPublished(post db.Post) {
	for _, platform := range d.platforms {
		a := Announcement{
			EventID:     uuid.NewString(),
			Platform:    platform,
			PostID:      post.ID,
			Title:       post.Title,
			Excerpt:     post.Excerpt,
			Category:    post.Category,
			Slug:        post.Slug,
			URL:         d.site.PostURL(post.Slug),
			PublishedAt: post.PublishedAt,
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.announce(a)
		}()
	}
}

func (d *Dispatcher) announce(a Announcement) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	if err := d.announcer.Announce(ctx, a); err != nil {
		d.logger.Warn("cross-post failed",
			zap.String("platform", a.Platform),
			zap.Uint("post_id", a.PostID),
			zap.String("event_id", a.EventID),
			zap.Error(err))
		return
	}
	d.logger.Info("cross-post sent",
		zap.String("platform", a.Platform),
		zap.Uint("post_id", a.PostID),
		zap.Duration("took", time.Since(start)))
}

// Wait blocks until every in-flight announcement has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
