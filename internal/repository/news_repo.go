package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type NewsRepository struct {
	client *firestore.Client
}

func NewNewsRepository(client *firestore.Client) *NewsRepository {
	return &NewsRepository{client: client}
}

// Create stores a post and returns its generated id.
func (r *NewsRepository) Create(ctx context.Context, news *models.News) (string, error) {
	id, err := addWithID(ctx, r.client.Collection(NewsCollection), news)
	if err != nil {
		return "", errors.Wrap(err, "create news")
	}
	news.ID = id
	return id, nil
}

func (r *NewsRepository) Get(ctx context.Context, id string) (*models.News, error) {
	doc, err := r.client.Collection(NewsCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, notFoundOr(err, "news", "get news")
	}

	var news models.News
	if err := doc.DataTo(&news); err != nil {
		return nil, errors.Wrap(err, "decode news")
	}
	news.ID = doc.Ref.ID
	return &news, nil
}

// List returns every post, newest first.
func (r *NewsRepository) List(ctx context.Context) ([]*models.News, error) {
	it := r.client.Collection(NewsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	news, err := decodeAll(it, func(n *models.News, id string) { n.ID = id })
	return news, errors.Wrap(err, "list news")
}

func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(NewsCollection).Doc(id).Delete(ctx)
	return errors.Wrap(err, "delete news")
}
