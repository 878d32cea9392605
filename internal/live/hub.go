package live

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

// Topics served by the hub.
const (
	TopicChat    = "chat"
	TopicChanges = "changes"
)

// ErrHubClosed is returned once the hub has stopped.
var ErrHubClosed = errors.New("live hub closed")

// Frame is what a subscriber receives: the whole list first, then deltas.
// A later snapshot frame replaces the list the client holds.
type Frame struct {
	Type   string  `json:"type"` // "snapshot" or "delta"
	Topic  string  `json:"topic"`
	Items  []Item  `json:"items,omitempty"`
	Deltas []Delta `json:"deltas,omitempty"`
}

// Subscription is one client's feed of a topic. C is closed when the
// subscription ends, either by Close, by the hub stopping, or because the
// client fell too far behind.
type Subscription struct {
	UID   string
	Topic string
	C     <-chan Frame

	send chan Frame
	hub  *Hub
}

// Close ends the subscription.
func (s *Subscription) Close() {
	select {
	case s.hub.unregister <- s:
	case <-s.hub.done:
	}
}

type publication struct {
	topic  string
	deltas []Delta
	reset  bool
	done   chan struct{} // closed once the batch is applied and fanned out
}

// Hub fans topic deltas out to subscribers. All subscriber bookkeeping
// happens on the Run goroutine.
type Hub struct {
	collections map[string]*Collection
	bufferSize  int

	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}

	register   chan *Subscription
	unregister chan *Subscription
	broadcast  chan publication
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub serving the given topics. bufferSize is how many
// frames a subscriber may lag behind before it is dropped.
func NewHub(bufferSize int, topics ...string) *Hub {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	h := &Hub{
		collections: make(map[string]*Collection, len(topics)),
		bufferSize:  bufferSize,
		subs:        make(map[string]map[*Subscription]struct{}, len(topics)),
		register:    make(chan *Subscription),
		unregister:  make(chan *Subscription),
		broadcast:   make(chan publication),
		done:        make(chan struct{}),
	}
	for _, t := range topics {
		h.collections[t] = NewCollection()
		h.subs[t] = make(map[*Subscription]struct{})
	}
	return h
}

// Run processes subscriptions and publications until ctx is done, then
// closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.subs[sub.Topic][sub] = struct{}{}
			h.mu.Unlock()
			// the buffer is empty, so the snapshot always fits
			sub.send <- h.snapshot(sub.Topic)
			logger.Debug("live: subscribed", zap.String("topic", sub.Topic), zap.String("uid", sub.UID))

		case sub := <-h.unregister:
			h.drop(sub)

		case p := <-h.broadcast:
			h.deliver(p)
			close(p.done)
		}
	}
}

func (h *Hub) shutdown() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for topic, subs := range h.subs {
			for sub := range subs {
				close(sub.send)
			}
			h.subs[topic] = make(map[*Subscription]struct{})
		}
	})
}

func (h *Hub) snapshot(topic string) Frame {
	return Frame{Type: "snapshot", Topic: topic, Items: h.collections[topic].Items()}
}

func (h *Hub) drop(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.Topic][sub]; ok {
		delete(h.subs[sub.Topic], sub)
		close(sub.send)
	}
}

func (h *Hub) deliver(p publication) {
	coll := h.collections[p.topic]
	if p.reset {
		coll.Reset()
	}
	applied := make([]Delta, 0, len(p.deltas))
	for _, d := range p.deltas {
		if coll.Apply(d) {
			applied = append(applied, d)
		}
	}

	var frame Frame
	switch {
	case p.reset:
		frame = h.snapshot(p.topic)
	case len(applied) == 0:
		return
	default:
		frame = Frame{Type: "delta", Topic: p.topic, Deltas: applied}
	}

	var slow []*Subscription
	h.mu.RLock()
	for sub := range h.subs[p.topic] {
		select {
		case sub.send <- frame:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		logger.Warn("live: dropping slow subscriber", zap.String("topic", sub.Topic), zap.String("uid", sub.UID))
		h.drop(sub)
	}
}

// Subscribe starts a feed of topic for uid.
func (h *Hub) Subscribe(uid, topic string) (*Subscription, error) {
	if _, ok := h.collections[topic]; !ok {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	send := make(chan Frame, h.bufferSize)
	sub := &Subscription{UID: uid, Topic: topic, C: send, send: send, hub: h}

	select {
	case h.register <- sub:
		return sub, nil
	case <-h.done:
		return nil, ErrHubClosed
	}
}

// Publish applies deltas to topic and forwards the ones that changed it.
// It returns once the collection holds the batch, or the hub has stopped.
func (h *Hub) Publish(topic string, deltas []Delta) {
	h.publish(publication{topic: topic, deltas: deltas})
}

// Replace swaps topic's whole list and sends every subscriber a new snapshot.
func (h *Hub) Replace(topic string, items []Delta) {
	h.publish(publication{topic: topic, deltas: items, reset: true})
}

func (h *Hub) publish(p publication) {
	if _, ok := h.collections[p.topic]; !ok {
		logger.Warn("live: publish to unknown topic", zap.String("topic", p.topic))
		return
	}
	p.done = make(chan struct{})
	select {
	case h.broadcast <- p:
	case <-h.done:
		return
	}
	select {
	case <-p.done:
	case <-h.done:
	}
}

// Subscribers returns the uids currently following topic.
func (h *Hub) Subscribers(topic string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, len(h.subs[topic]))
	for sub := range h.subs[topic] {
		if _, ok := seen[sub.UID]; ok {
			continue
		}
		seen[sub.UID] = struct{}{}
		out = append(out, sub.UID)
	}
	return out
}

// Collection returns the list the hub keeps for topic, or nil.
func (h *Hub) Collection(topic string) *Collection {
	return h.collections[topic]
}
