package loginsession_test

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/jrsteele09/go-donor-portal/server/loginsession"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()

	calls := 0
	create := func() (*loginsession.Session, error) {
		calls++
		return &loginsession.Session{}, nil
	}

	first, created, err := repo.GetOrCreate("browser-1", create)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "browser-1", first.BrowserID)
	require.False(t, first.CreatedAt.IsZero())

	again, created, err := repo.GetOrCreate("browser-1", create)
	require.NoError(t, err)
	require.False(t, created)
	require.Same(t, first, again)
	require.Equal(t, 1, calls)

	_, _, err = repo.GetOrCreate("", create)
	require.Error(t, err)
}

func TestGetOrCreateFailure(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()
	boom := errors.New("boom")

	_, _, err := repo.GetOrCreate("b", func() (*loginsession.Session, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, repo.Len())
}

func TestGetAndDelete(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()

	_, err := repo.Get("missing")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, _, err = repo.GetOrCreate("b", func() (*loginsession.Session, error) { return &loginsession.Session{}, nil })
	require.NoError(t, err)

	got, err := repo.Get("b")
	require.NoError(t, err)
	require.Equal(t, "b", got.BrowserID)

	require.NoError(t, repo.Delete("b"))
	require.NoError(t, repo.Delete("b"))
	_, err = repo.Get("b")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestPrune(t *testing.T) {
	repo := loginsession.NewInMemoryLoginSessionRepo()
	for _, id := range []string{"a", "b"} {
		_, _, err := repo.GetOrCreate(id, func() (*loginsession.Session, error) { return &loginsession.Session{}, nil })
		require.NoError(t, err)
	}

	require.Equal(t, 0, repo.Prune(time.Now().Add(-time.Hour)))
	require.Equal(t, 2, repo.Prune(time.Now().Add(time.Hour)))
	require.Equal(t, 0, repo.Len())
}
