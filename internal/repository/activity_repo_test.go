package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
)

func TestActivityRepository_Totals(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(newEmulatorClient(t))

	empty, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty.NewsCount)

	require.NoError(t, repo.IncrementTotal(ctx, activity.FieldNewsCount))
	require.NoError(t, repo.IncrementTotal(ctx, activity.FieldNewsCount))
	require.NoError(t, repo.IncrementTotal(ctx, activity.FieldEventsCreated))

	got, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, *got.NewsCount)
	assert.EqualValues(t, 1, *got.EventsCreated)
	assert.Nil(t, got.NumberOfChanges)
}

func TestActivityRepository_RaiseTotalsNeverLowers(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(newEmulatorClient(t))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.IncrementTotal(ctx, activity.FieldNewsCount))
	}

	raised, err := repo.RaiseTotals(ctx, map[string]int64{
		activity.FieldNewsCount:       3,
		activity.FieldNumberOfChanges: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{activity.FieldNumberOfChanges: 7}, raised)

	got, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, *got.NewsCount)
	assert.EqualValues(t, 7, *got.NumberOfChanges)
}
