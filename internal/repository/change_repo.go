package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type ChangeRepository struct {
	client *firestore.Client
}

func NewChangeRepository(client *firestore.Client) *ChangeRepository {
	return &ChangeRepository{client: client}
}

// Create logs a schedule swap.
func (r *ChangeRepository) Create(ctx context.Context, change *models.Change) (string, error) {
	id, err := addWithID(ctx, r.client.Collection(ChangesCollection), change)
	if err != nil {
		return "", errors.Wrap(err, "create change")
	}
	change.ID = id
	return id, nil
}

// List returns every change, most recent first.
func (r *ChangeRepository) List(ctx context.Context) ([]*models.Change, error) {
	it := r.client.Collection(ChangesCollection).OrderBy("timestamp", firestore.Desc).Documents(ctx)
	changes, err := decodeAll(it, func(c *models.Change, id string) { c.ID = id })
	return changes, errors.Wrap(err, "list changes")
}

// Query is the ordered query the live watcher listens on.
func (r *ChangeRepository) Query() firestore.Query {
	return r.client.Collection(ChangesCollection).OrderBy("timestamp", firestore.Desc)
}

func (r *ChangeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(ChangesCollection).Doc(id).Delete(ctx)
	return errors.Wrap(err, "delete change")
}
