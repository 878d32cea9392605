package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
)

const totalsDoc = "totals"

// totals mirrors the shared counter document. Fields stay nil until the
// first item of their category is created.
type totals struct {
	NewsCount       *int64 `firestore:"newsCount,omitempty"`
	EventsCreated   *int64 `firestore:"eventsCreated,omitempty"`
	NumberOfChanges *int64 `firestore:"numberOfChanges,omitempty"`
	TasksCount      *int64 `firestore:"tasksCount,omitempty"`
}

func (t totals) counters() activity.Counters {
	return activity.Counters{
		NewsCount:       t.NewsCount,
		EventsCreated:   t.EventsCreated,
		NumberOfChanges: t.NumberOfChanges,
		TasksCount:      t.TasksCount,
	}
}

// ActivityRepository keeps the shared per-category totals in a single
// document, Activity/totals.
type ActivityRepository struct {
	client *firestore.Client
}

func NewActivityRepository(client *firestore.Client) *ActivityRepository {
	return &ActivityRepository{client: client}
}

func (r *ActivityRepository) doc() *firestore.DocumentRef {
	return r.client.Collection(ActivityCollection).Doc(totalsDoc)
}

// Totals reads the shared counters. A missing document means nothing has
// been created yet and yields empty counters.
func (r *ActivityRepository) Totals(ctx context.Context) (activity.Counters, error) {
	snap, err := r.doc().Get(ctx)
	if isNotFound(err) {
		return activity.Counters{}, nil
	}
	if err != nil {
		return activity.Counters{}, errors.Wrap(err, "get activity totals")
	}

	var t totals
	if err := snap.DataTo(&t); err != nil {
		return activity.Counters{}, errors.Wrap(err, "decode activity totals")
	}
	return t.counters(), nil
}

// IncrementTotal adds one to a shared counter, creating the document on
// first use.
func (r *ActivityRepository) IncrementTotal(ctx context.Context, field string) error {
	_, err := r.doc().Set(ctx, map[string]interface{}{
		field: firestore.Increment(1),
	}, firestore.MergeAll)
	return errors.Wrapf(err, "increment %s", field)
}

// RaiseTotals lifts each listed counter to at least the given value inside
// a transaction. Counters already at or above their value are left alone.
// The fields that changed are returned with their new values.
func (r *ActivityRepository) RaiseTotals(ctx context.Context, values map[string]int64) (map[string]int64, error) {
	var raised map[string]int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		raised = make(map[string]int64)

		snap, err := tx.Get(r.doc())
		if err != nil && !isNotFound(err) {
			return err
		}

		current := map[string]interface{}{}
		if snap != nil && snap.Exists() {
			current = snap.Data()
		}

		updates := make(map[string]interface{})
		for field, v := range values {
			if have, ok := current[field].(int64); ok && have >= v {
				continue
			}
			updates[field] = v
			raised[field] = v
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Set(r.doc(), updates, firestore.MergeAll)
	})
	if err != nil {
		return nil, errors.Wrap(err, "raise activity totals")
	}
	return raised, nil
}
