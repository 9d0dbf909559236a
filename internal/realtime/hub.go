// Package realtime fans view count changes out to live subscribers.
package realtime

import (
	"context"
	"sync"
	"time"
)

const subscriptionBuffer = 16

// ViewUpdate is published after every tracked view.
type ViewUpdate struct {
	PostID uint      `json:"post_id"`
	Count  uint64    `json:"view_count"`
	At     time.Time `json:"at"`
}

// Broker publishes updates and hands out per-post subscriptions.
type Broker interface {
	Publish(ctx context.Context, update ViewUpdate) error
	Subscribe(postID uint) *Subscription
}

// Hub is the in-process registry of subscriptions keyed by post id.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint]map[uint64]*Subscription
}

var _ Broker = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[uint64]*Subscription)}
}

// Subscription receives the updates of one post until Close is called.
type Subscription struct {
	hub    *Hub
	postID uint
	id     uint64
	ch     chan ViewUpdate
	closed bool
	// last 是已投递的最大计数，更小或相等的乱序更新直接丢弃。
	last uint64
}

// Updates is closed once the subscription is closed.
func (s *Subscription) Updates() <-chan ViewUpdate {
	return s.ch
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

func (h *Hub) Subscribe(postID uint) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{hub: h, postID: postID, id: h.nextID, ch: make(chan ViewUpdate, subscriptionBuffer)}
	if h.subs[postID] == nil {
		h.subs[postID] = make(map[uint64]*Subscription)
	}
	h.subs[postID][sub.id] = sub
	return sub
}

// Publish delivers update to every local subscriber of the post.
func (h *Hub) Publish(_ context.Context, update ViewUpdate) error {
	h.dispatch(update)
	return nil
}

// Subscribers reports how many live subscriptions a post has.
func (h *Hub) Subscribers(postID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[postID])
}

// dispatch never blocks: a subscriber whose buffer is full loses its oldest
// pending update, so it always converges on the latest count. Counts only move
// forward per subscriber; an update that arrives after a higher one is dropped.
func (h *Hub) dispatch(update ViewUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[update.PostID] {
		if update.Count <= sub.last {
			continue
		}
		sub.last = update.Count
		select {
		case sub.ch <- update:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- update:
		default:
		}
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	if subs := h.subs[sub.postID]; subs != nil {
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.subs, sub.postID)
		}
	}
	close(sub.ch)
}
