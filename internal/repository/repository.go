package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

// Collection names shared with the SPA.
const (
	UsersCollection       = "Users"
	NewsCollection        = "News"
	EventsCollection      = "Events"
	TasksCollection       = "Tasks"
	ChangesCollection     = "Changes"
	MessagesCollection    = "messages"
	CredentialsCollection = "Credentials"
	ActivityCollection    = "Activity"
)

// Firestore caps a write batch at 500 operations.
const maxBatchSize = 500

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// notFoundOr maps a Firestore NotFound to an AppError and wraps anything else.
func notFoundOr(err error, domain, msg string) error {
	if isNotFound(err) {
		return apperrors.NotFound(domain, domain+" not found").WithError(err)
	}
	return errors.Wrap(err, msg)
}

// addWithID adds data to the collection and writes the generated id back
// into the "id" field.
func addWithID(ctx context.Context, col *firestore.CollectionRef, data interface{}) (string, error) {
	docRef, _, err := col.Add(ctx, data)
	if err != nil {
		return "", err
	}

	_, err = docRef.Update(ctx, []firestore.Update{
		{Path: "id", Value: docRef.ID},
	})
	if err != nil {
		return "", err
	}
	return docRef.ID, nil
}

// decodeAll drains it into a slice, skipping documents that fail to decode.
func decodeAll[T any](it *firestore.DocumentIterator, setID func(*T, string)) ([]*T, error) {
	defer it.Stop()

	var out []*T
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			logger.Warn("skipping undecodable document", zap.String("path", doc.Ref.Path), zap.Error(err))
			continue
		}
		if setID != nil {
			setID(&v, doc.Ref.ID)
		}
		out = append(out, &v)
	}
	return out, nil
}
