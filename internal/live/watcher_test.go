package live

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docSnap(id string) *firestore.DocumentSnapshot {
	return &firestore.DocumentSnapshot{Ref: &firestore.DocumentRef{ID: id}}
}

func TestWatcher_AfterPublishSeesAppliedBatch(t *testing.T) {
	ctx := context.Background()
	h := startHub(t, 8)
	w := NewWatcher(h, TopicChat, firestore.Query{}, nil)

	var beforePublish, afterPublish []int
	w.Enrich = func(ctx context.Context, deltas []Delta) {
		beforePublish = append(beforePublish, h.Collection(TopicChat).Len())
	}
	w.AfterPublish = func(ctx context.Context) {
		afterPublish = append(afterPublish, h.Collection(TopicChat).Len())
	}

	w.handle(ctx, []Delta{
		{Kind: Added, ID: "m000", Key: t0},
		{Kind: Added, ID: "m001", Key: t0},
	}, true)
	for i := 2; i < 200; i++ {
		w.handle(ctx, []Delta{{Kind: Added, ID: fmt.Sprintf("m%03d", i), Key: t0.Add(time.Duration(i) * time.Second)}}, false)
	}

	require.Len(t, afterPublish, 199)
	assert.Equal(t, 2, afterPublish[0])
	for i, n := range afterPublish[1:] {
		assert.Equal(t, i+3, n, "batch %d", i+1)
	}
	// enrichment runs before the batch reaches the hub
	assert.Equal(t, 0, beforePublish[0])
	assert.Equal(t, 2, beforePublish[1])
}

func TestWatcher_ReplaceThenDeltas(t *testing.T) {
	ctx := context.Background()
	h := startHub(t, 8)
	h.Publish(TopicChanges, []Delta{{Kind: Added, ID: "stale", Key: t0}})

	sub, err := h.Subscribe("ana", TopicChanges)
	require.NoError(t, err)
	defer sub.Close()
	first := recv(t, sub)
	require.Len(t, first.Items, 1)

	calls := 0
	w := NewWatcher(h, TopicChanges, firestore.Query{}, nil)
	w.AfterPublish = func(ctx context.Context) { calls++ }

	// a fresh listen replaces whatever the hub held
	w.handle(ctx, []Delta{{Kind: Added, ID: "c1", Data: "troca", Key: t0}}, true)
	snap := recv(t, sub)
	assert.Equal(t, "snapshot", snap.Type)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "c1", snap.Items[0].ID)

	w.handle(ctx, []Delta{{Kind: Removed, ID: "c1"}}, false)
	delta := recv(t, sub)
	assert.Equal(t, "delta", delta.Type)
	require.Len(t, delta.Deltas, 1)
	assert.Equal(t, Removed, delta.Deltas[0].Kind)
	assert.Zero(t, h.Collection(TopicChanges).Len())

	w.handle(ctx, nil, false)
	assert.Equal(t, 2, calls, "empty batches are not published")

	// an empty first snapshot still clears the list
	w.handle(ctx, []Delta{{Kind: Added, ID: "c2", Key: t0}}, false)
	recv(t, sub)
	w.handle(ctx, nil, true)
	cleared := recv(t, sub)
	assert.Equal(t, "snapshot", cleared.Type)
	assert.Empty(t, cleared.Items)
}

func TestWatcher_DecodeSkipsBadDocuments(t *testing.T) {
	h := NewHub(4, TopicChat)
	decoded := map[string]bool{}
	w := NewWatcher(h, TopicChat, firestore.Query{}, func(doc *firestore.DocumentSnapshot) (any, time.Time, error) {
		decoded[doc.Ref.ID] = true
		if doc.Ref.ID == "broken" {
			return nil, time.Time{}, errors.New("missing createdAt")
		}
		return "ok", t0, nil
	})

	deltas := w.changes([]firestore.DocumentChange{
		{Kind: firestore.DocumentAdded, Doc: docSnap("good")},
		{Kind: firestore.DocumentModified, Doc: docSnap("broken")},
		{Kind: firestore.DocumentRemoved, Doc: docSnap("gone")},
	})

	require.Len(t, deltas, 2)
	assert.Equal(t, Delta{Kind: Added, ID: "good", Data: "ok", Key: t0}, deltas[0])
	assert.Equal(t, Delta{Kind: Removed, ID: "gone"}, deltas[1])
	assert.False(t, decoded["gone"], "removals are not decoded")
	assert.True(t, decoded["broken"])
}
