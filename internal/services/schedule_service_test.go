package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/activity"
	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services/servicetest"
)

func newScheduleService(f *contentFixture) *ScheduleService {
	svc := NewScheduleService(f.files, servicetest.NewChanges(), f.users, f.act, f.push)
	svc.now = f.clock.Now
	return svc
}

func TestScheduleService_LatestIsNewestUpload(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture()
	svc := newScheduleService(f)

	_, err := svc.Latest(ctx, 2024, 4)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	first, err := svc.Upload(ctx, 2024, 4, &Upload{Filename: "zzz.pdf", ContentType: "application/pdf", Body: strings.NewReader("v1")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Path, "horario/2024/4/zzz.pdf"))
	assert.Equal(t, "zzz.pdf", first.Name)
	assert.Equal(t, "Maio", first.MonthName)

	f.clock.Advance(time.Minute)
	_, err = svc.Upload(ctx, 2024, 4, &Upload{Filename: "aaa.pdf", ContentType: "application/pdf", Body: strings.NewReader("v2")})
	require.NoError(t, err)

	latest, err := svc.Latest(ctx, 2024, 4)
	require.NoError(t, err)
	assert.Equal(t, "aaa.pdf", latest.Name, "newest by creation time, not by name")
	assert.Equal(t, "https://files.test/"+latest.Path, latest.URL)

	r, sf, err := svc.Open(ctx, 2024, 4)
	require.NoError(t, err)
	body, _ := io.ReadAll(r)
	r.Close()
	assert.Equal(t, "v2", string(body))
	assert.Equal(t, latest.Path, sf.Path)

	require.NoError(t, svc.Delete(ctx, 2024, 4))
	latest, err = svc.Latest(ctx, 2024, 4)
	require.NoError(t, err)
	assert.Equal(t, "zzz.pdf", latest.Name)

	require.Len(t, f.fcm.Sent, 2)
	assert.Empty(t, f.totals.Values, "uploads do not count as schedule changes")
}

func TestScheduleService_MonthBounds(t *testing.T) {
	ctx := context.Background()
	svc := newScheduleService(newContentFixture())

	for _, m := range []int{-1, 12} {
		_, err := svc.Latest(ctx, 2024, m)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest), "month %d", m)
	}
	_, err := svc.Upload(ctx, 2024, 0, &Upload{Filename: "/", Body: strings.NewReader("")})
	assert.Error(t, err)
}

func TestScheduleService_Changes(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture()
	svc := newScheduleService(f)

	_, err := svc.CreateChange(ctx, "rui", &models.CreateChangeRequest{Colaborador: " ", Mudancas: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest))

	change, err := svc.CreateChange(ctx, "rui", &models.CreateChangeRequest{Colaborador: "Eva", Mudancas: "Troca de turno dia 12"})
	require.NoError(t, err)
	assert.Equal(t, "Rui", change.UserName)
	assert.Equal(t, may10, change.Timestamp)
	assert.EqualValues(t, 1, f.totals.Values[activity.FieldNumberOfChanges])

	list, err := svc.Changes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteChange(ctx, change.ID))
	list, err = svc.Changes(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.EqualValues(t, 1, f.totals.Values[activity.FieldNumberOfChanges])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "junho.pdf", displayName("horario/2024/5/junho.pdf0b8f3c8e-4f7d-4f3b-9d55-2f1d2c7b6a11"))
	assert.Equal(t, "legacy.pdf", displayName("horario/2024/5/legacy.pdf"))
}
