package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/files/"})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	require.NoError(t, s.Save(ctx, "horario/2024/5/junho.pdf", strings.NewReader("pdf"), "application/pdf"))

	ok, err := s.Exists(ctx, "horario/2024/5/junho.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := s.Get(ctx, "horario/2024/5/junho.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(body))

	require.NoError(t, s.Delete(ctx, "horario/2024/5/junho.pdf"))
	err = s.Delete(ctx, "horario/2024/5/junho.pdf")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = s.Get(ctx, "horario/2024/5/junho.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	require.NoError(t, s.Save(ctx, "horario/2024/5/b.pdf", strings.NewReader("b"), ""))
	require.NoError(t, s.Save(ctx, "horario/2024/5/a.pdf", strings.NewReader("aa"), ""))
	require.NoError(t, s.Save(ctx, "horario/2024/6/c.pdf", strings.NewReader("c"), ""))

	got, err := s.List(ctx, "horario/2024/5/")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "horario/2024/5/a.pdf", got[0].Path)
	assert.EqualValues(t, 2, got[0].Size)
	assert.Equal(t, "horario/2024/5/b.pdf", got[1].Path)

	empty, err := s.List(ctx, "horario/1999/0/")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLocalStorage_PathsStayInsideBase(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	require.NoError(t, s.Save(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	ok, err := s.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok, "parent segments are cleaned away")
}

func TestLocalStorage_GetURL(t *testing.T) {
	s := newLocal(t)
	u, err := s.GetURL(context.Background(), "images/foto praia.png")
	require.NoError(t, err)
	assert.Equal(t, "/files/images/foto%20praia.png", u)
}
