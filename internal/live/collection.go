// Package live streams the chat and schedule-change lists to clients as
// deltas. Firestore snapshot listeners feed a Hub, the Hub keeps one indexed
// Collection per topic and fans the deltas out to websocket subscribers.
package live

import (
	"sort"
	"sync"
	"time"
)

// Kind is what happened to a document.
type Kind string

const (
	Added    Kind = "added"
	Modified Kind = "modified"
	Removed  Kind = "removed"
)

// Delta is one change to a topic's list.
type Delta struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
	Data any    `json:"data,omitempty"`
	// Key orders the item within its list.
	Key time.Time `json:"-"`
}

// Item is an entry of a Collection.
type Item struct {
	ID   string    `json:"id"`
	Data any       `json:"data"`
	Key  time.Time `json:"-"`
}

// Collection is a list indexed by document id and ordered by key, then id.
type Collection struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewCollection() *Collection {
	return &Collection{items: make(map[string]Item)}
}

// Apply merges one delta. It reports whether the collection changed.
func (c *Collection) Apply(d Delta) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch d.Kind {
	case Added, Modified:
		c.items[d.ID] = Item{ID: d.ID, Data: d.Data, Key: d.Key}
		return true
	case Removed:
		if _, ok := c.items[d.ID]; !ok {
			return false
		}
		delete(c.items, d.ID)
		return true
	}
	return false
}

// Reset empties the collection.
func (c *Collection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]Item)
}

func (c *Collection) Get(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns the entries in order.
func (c *Collection) Items() []Item {
	c.mu.RLock()
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Key.Equal(out[j].Key) {
			return out[i].Key.Before(out[j].Key)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
