package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type MessageRepository struct {
	client *firestore.Client
}

func NewMessageRepository(client *firestore.Client) *MessageRepository {
	return &MessageRepository{client: client}
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) (string, error) {
	id, err := addWithID(ctx, r.client.Collection(MessagesCollection), msg)
	if err != nil {
		return "", errors.Wrap(err, "create message")
	}
	msg.ID = id
	return id, nil
}

// List returns the whole chat, oldest first.
func (r *MessageRepository) List(ctx context.Context) ([]*models.Message, error) {
	messages, err := decodeAll(r.Query().Documents(ctx), func(m *models.Message, id string) { m.ID = id })
	return messages, errors.Wrap(err, "list messages")
}

// Count returns the number of messages using an aggregation query.
func (r *MessageRepository) Count(ctx context.Context) (int64, error) {
	res, err := r.client.Collection(MessagesCollection).NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count messages")
	}
	v, ok := res["all"]
	if !ok {
		return 0, errors.New("count messages: missing aggregate")
	}
	// the value is a *firestorepb.Value holding an integer
	type integerValue interface{ GetIntegerValue() int64 }
	iv, ok := v.(integerValue)
	if !ok {
		return 0, errors.Errorf("count messages: unexpected aggregate %T", v)
	}
	return iv.GetIntegerValue(), nil
}

// Query is the ordered query the live watcher listens on.
func (r *MessageRepository) Query() firestore.Query {
	return r.client.Collection(MessagesCollection).OrderBy("createdAt", firestore.Asc)
}
