package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

// newEmulatorClient connects to the Firestore emulator, skipping the test
// when none is running.
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	// a fresh project id keeps tests isolated from each other
	client, err := firestore.NewClient(context.Background(), "test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestUserRepository_IncrementAndSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newEmulatorClient(t))

	for _, uid := range []string{"ana", "rui", "eva"} {
		require.NoError(t, repo.Create(ctx, &models.UserProfile{
			UID: uid, Name: uid, Email: uid + "@aroeira.pt", CreatedAt: time.Now(),
		}))
	}

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ana", "rui", "eva"}, ids)

	n, err := repo.Increment(ctx, ids, activity.FieldNewsCount)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = repo.Increment(ctx, []string{"ana"}, activity.FieldNewsCount)
	require.NoError(t, err)

	ana, err := repo.Get(ctx, "ana")
	require.NoError(t, err)
	require.NotNil(t, ana.NewsCount)
	assert.EqualValues(t, 2, *ana.NewsCount)
	assert.Nil(t, ana.LatestNewCount)

	require.NoError(t, repo.SetSnapshot(ctx, "ana", activity.Snapshot(ana.Counters())))
	ana, err = repo.Get(ctx, "ana")
	require.NoError(t, err)
	assert.EqualValues(t, 2, *ana.LatestNewCount)
	assert.EqualValues(t, 0, *ana.LatestTaskCount)
	assert.Empty(t, activity.Diff(ana.Counters()))
}

func TestUserRepository_MissingUser(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newEmulatorClient(t))

	_, err := repo.Get(ctx, "ghost")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	err = repo.UpdateRole(ctx, "ghost", models.RoleAdmin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
