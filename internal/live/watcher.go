package live

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

// Decoder turns a document into the item data and its ordering key.
type Decoder func(doc *firestore.DocumentSnapshot) (data any, key time.Time, err error)

// Watcher follows a Firestore query and feeds its changes to a hub topic.
type Watcher struct {
	Topic  string
	Query  firestore.Query
	Decode Decoder

	// Enrich, when set, runs on every batch before it is published.
	Enrich func(ctx context.Context, deltas []Delta)
	// AfterPublish, when set, runs after every batch is handed to the hub.
	AfterPublish func(ctx context.Context)
	// RetryDelay is the pause before listening again after an error.
	RetryDelay time.Duration

	hub *Hub
}

func NewWatcher(hub *Hub, topic string, query firestore.Query, decode Decoder) *Watcher {
	return &Watcher{
		Topic:      topic,
		Query:      query,
		Decode:     decode,
		RetryDelay: 5 * time.Second,
		hub:        hub,
	}
}

// Run listens until ctx is done. A failed listener is restarted after
// RetryDelay; the first snapshot of every listen replaces the topic's list.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		err := w.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("live: listener stopped, retrying",
			zap.String("topic", w.Topic),
			zap.Duration("delay", w.RetryDelay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.RetryDelay):
		}
	}
}

func (w *Watcher) listen(ctx context.Context) error {
	it := w.Query.Snapshots(ctx)
	defer it.Stop()

	first := true
	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled {
				return nil
			}
			return errors.Wrapf(err, "watch %s", w.Topic)
		}

		var deltas []Delta
		if first {
			deltas, err = w.full(snap)
			if err != nil {
				return err
			}
		} else {
			deltas = w.changes(snap.Changes)
		}
		w.handle(ctx, deltas, first)
		first = false
	}
}

// full lists every document of the snapshot as added.
func (w *Watcher) full(snap *firestore.QuerySnapshot) ([]Delta, error) {
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s snapshot", w.Topic)
	}
	out := make([]Delta, 0, len(docs))
	for _, doc := range docs {
		if d, ok := w.decode(Added, doc); ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (w *Watcher) changes(changes []firestore.DocumentChange) []Delta {
	out := make([]Delta, 0, len(changes))
	for _, ch := range changes {
		if d, ok := w.decode(kindOf(ch.Kind), ch.Doc); ok {
			out = append(out, d)
		}
	}
	return out
}

func (w *Watcher) decode(kind Kind, doc *firestore.DocumentSnapshot) (Delta, bool) {
	if kind == Removed {
		return Delta{Kind: Removed, ID: doc.Ref.ID}, true
	}
	data, key, err := w.Decode(doc)
	if err != nil {
		logger.Warn("live: skipping undecodable document",
			zap.String("topic", w.Topic),
			zap.String("id", doc.Ref.ID),
			zap.Error(err),
		)
		return Delta{}, false
	}
	return Delta{Kind: kind, ID: doc.Ref.ID, Data: data, Key: key}, true
}

func (w *Watcher) handle(ctx context.Context, deltas []Delta, reset bool) {
	if !reset && len(deltas) == 0 {
		return
	}
	if w.Enrich != nil {
		w.Enrich(ctx, deltas)
	}
	if reset {
		w.hub.Replace(w.Topic, deltas)
	} else {
		w.hub.Publish(w.Topic, deltas)
	}
	if w.AfterPublish != nil {
		w.AfterPublish(ctx)
	}
}

func kindOf(k firestore.DocumentChangeKind) Kind {
	switch k {
	case firestore.DocumentAdded:
		return Added
	case firestore.DocumentRemoved:
		return Removed
	default:
		return Modified
	}
}

// DecodeMessage decodes a chat message, keyed by creation time.
func DecodeMessage(doc *firestore.DocumentSnapshot) (any, time.Time, error) {
	var m models.Message
	if err := doc.DataTo(&m); err != nil {
		return nil, time.Time{}, err
	}
	m.ID = doc.Ref.ID
	return &m, m.CreatedAt, nil
}

// DecodeChange decodes a schedule change, keyed by its timestamp.
func DecodeChange(doc *firestore.DocumentSnapshot) (any, time.Time, error) {
	var c models.Change
	if err := doc.DataTo(&c); err != nil {
		return nil, time.Time{}, err
	}
	c.ID = doc.Ref.ID
	return &c, c.Timestamp, nil
}

// Messages returns the chat messages carried by deltas.
func Messages(deltas []Delta) []*models.Message {
	var out []*models.Message
	for _, d := range deltas {
		if m, ok := d.Data.(*models.Message); ok {
			out = append(out, m)
		}
	}
	return out
}
