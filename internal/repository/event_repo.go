package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type EventRepository struct {
	client *firestore.Client
}

func NewEventRepository(client *firestore.Client) *EventRepository {
	return &EventRepository{client: client}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) (string, error) {
	id, err := addWithID(ctx, r.client.Collection(EventsCollection), event)
	if err != nil {
		return "", errors.Wrap(err, "create event")
	}
	event.ID = id
	return id, nil
}

// Between returns the events dated within [from, to], earliest first.
func (r *EventRepository) Between(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	it := r.client.Collection(EventsCollection).
		Where("eventDate", ">=", from).
		Where("eventDate", "<=", to).
		OrderBy("eventDate", firestore.Asc).
		Documents(ctx)
	events, err := decodeAll(it, func(e *models.Event, id string) { e.ID = id })
	return events, errors.Wrap(err, "list events")
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(EventsCollection).Doc(id).Delete(ctx)
	return errors.Wrap(err, "delete event")
}
