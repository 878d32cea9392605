package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(UsersCollection)
}

// Create writes a new profile keyed by its account id.
func (r *UserRepository) Create(ctx context.Context, user *models.UserProfile) error {
	_, err := r.users().Doc(user.UID).Set(ctx, user)
	return errors.Wrap(err, "create user")
}

// Get retrieves a profile by account id.
func (r *UserRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := r.users().Doc(uid).Get(ctx)
	if err != nil {
		return nil, notFoundOr(err, "user", "get user")
	}

	var user models.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Wrap(err, "decode user")
	}
	user.UID = doc.Ref.ID
	return &user, nil
}

// List returns every profile.
func (r *UserRepository) List(ctx context.Context) ([]*models.UserProfile, error) {
	users, err := decodeAll(r.users().Documents(ctx), func(u *models.UserProfile, id string) {
		u.UID = id
	})
	return users, errors.Wrap(err, "list users")
}

// ListIDs returns the id of every profile without reading the documents.
func (r *UserRepository) ListIDs(ctx context.Context) ([]string, error) {
	it := r.users().Select().Documents(ctx)
	defer it.Stop()

	var ids []string
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "list user ids")
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// UpdateRole sets the role of a profile.
func (r *UserRepository) UpdateRole(ctx context.Context, uid string, role models.Role) error {
	return r.update(ctx, uid, []firestore.Update{{Path: "role", Value: string(role)}})
}

// UpdateFCMToken stores the device token used for push notifications.
func (r *UserRepository) UpdateFCMToken(ctx context.Context, uid, token string) error {
	return r.update(ctx, uid, []firestore.Update{{Path: "fcmToken", Value: token}})
}

// UpdateMessagesSeen records how many chat messages uid has loaded.
func (r *UserRepository) UpdateMessagesSeen(ctx context.Context, uid string, n int64) error {
	return r.update(ctx, uid, []firestore.Update{{Path: activity.FieldMessagesSeen, Value: n}})
}

// SetSnapshot writes the latest* fields of uid.
func (r *UserRepository) SetSnapshot(ctx context.Context, uid string, snapshot map[string]int64) error {
	updates := make([]firestore.Update, 0, len(snapshot))
	for field, v := range snapshot {
		updates = append(updates, firestore.Update{Path: field, Value: v})
	}
	return r.update(ctx, uid, updates)
}

func (r *UserRepository) update(ctx context.Context, uid string, updates []firestore.Update) error {
	_, err := r.users().Doc(uid).Update(ctx, updates)
	if err != nil {
		return notFoundOr(err, "user", "update user")
	}
	return nil
}

// Increment adds one to field on every listed profile. Writes go out in
// batches; a failing batch stops and the profiles already committed stay
// incremented. The number of profiles written is returned alongside any error.
func (r *UserRepository) Increment(ctx context.Context, uids []string, field string) (int, error) {
	written := 0
	for start := 0; start < len(uids); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(uids) {
			end = len(uids)
		}

		batch := r.client.Batch()
		for _, uid := range uids[start:end] {
			batch.Update(r.users().Doc(uid), []firestore.Update{
				{Path: field, Value: firestore.Increment(1)},
			})
		}
		if _, err := batch.Commit(ctx); err != nil {
			logger.Error("profile increment stopped",
				zap.String("field", field),
				zap.Int("written", written),
				zap.Int("total", len(uids)),
				zap.Error(err),
			)
			return written, errors.Wrapf(err, "increment %s", field)
		}
		written = end
	}
	return written, nil
}
