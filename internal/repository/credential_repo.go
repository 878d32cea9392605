package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
)

// Credential is the password hash of an account. It lives apart from the
// profile so that listing the team never reads it.
type Credential struct {
	UID          string    `firestore:"uid"`
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"passwordHash"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type CredentialRepository struct {
	client *firestore.Client
}

func NewCredentialRepository(client *firestore.Client) *CredentialRepository {
	return &CredentialRepository{client: client}
}

func (r *CredentialRepository) Create(ctx context.Context, cred *Credential) error {
	cred.Email = strings.ToLower(cred.Email)
	_, err := r.client.Collection(CredentialsCollection).Doc(cred.UID).Create(ctx, cred)
	return errors.Wrap(err, "create credential")
}

// GetByEmail looks up an account by its (case-insensitive) email.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	it := r.client.Collection(CredentialsCollection).
		Where("email", "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return nil, apperrors.NotFound("credential", "account not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get credential")
	}

	var cred Credential
	if err := doc.DataTo(&cred); err != nil {
		return nil, errors.Wrap(err, "decode credential")
	}
	return &cred, nil
}
