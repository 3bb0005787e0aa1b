package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/auth"
	"github.com/robalobadob/mastermind/internal/db"
	"github.com/robalobadob/mastermind/internal/game"
)

func setup(t *testing.T) (*Store, *auth.Service, *sql.DB) {
	t.Helper()
	conn, err := db.OpenMigrated(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStore(conn), auth.NewService(conn, "s", 1), conn
}

func TestStartRecordList(t *testing.T) {
	ctx := context.Background()
	s, users, _ := setup(t)
	u, err := users.Create(ctx, "erin", "password123")
	require.NoError(t, err)
	owner := Owner{UserID: u.ID}

	require.NoError(t, s.Start(ctx, "g1", owner))
	require.NoError(t, s.RecordGuess(ctx, "g1", owner, game.StatePlaying))
	require.NoError(t, s.RecordGuess(ctx, "g1", owner, game.StateWon))
	require.NoError(t, s.Start(ctx, "g2", owner))

	rows, err := s.ListByUser(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "g2", rows[0].ID)
	assert.Equal(t, game.StatePlaying, rows[0].Status)
	assert.Empty(t, rows[0].FinishedAt)

	assert.Equal(t, "g1", rows[1].ID)
	assert.Equal(t, game.StateWon, rows[1].Status)
	assert.Equal(t, 2, rows[1].Guesses)
	assert.NotEmpty(t, rows[1].FinishedAt)
}

func TestRecordGuessScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s, _, conn := setup(t)
	require.NoError(t, s.Start(ctx, "g1", Owner{AnonymousID: "anon-a"}))

	require.NoError(t, s.RecordGuess(ctx, "g1", Owner{AnonymousID: "anon-b"}, game.StatePlaying))

	var guesses int
	require.NoError(t, conn.QueryRow(`SELECT guesses FROM games WHERE id='g1'`).Scan(&guesses))
	assert.Equal(t, 0, guesses)
}

func TestClaimAnonymousGames(t *testing.T) {
	ctx := context.Background()
	s, users, _ := setup(t)
	anon := Owner{AnonymousID: "anon-1"}
	require.NoError(t, s.Start(ctx, "g1", anon))
	require.NoError(t, s.RecordGuess(ctx, "g1", anon, game.StateLost))

	u, err := users.Create(ctx, "frank", "password123")
	require.NoError(t, err)

	n, err := s.Claim(ctx, "anon-1", u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rows, err := s.ListByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, game.StateLost, rows[0].Status)

	n, err = s.Claim(ctx, "", u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOwns(t *testing.T) {
	ctx := context.Background()
	s, users, _ := setup(t)
	u, err := users.Create(ctx, "frank", "password123")
	require.NoError(t, err)

	require.NoError(t, s.Start(ctx, "g1", Owner{AnonymousID: "anon-a"}))

	ok, err := s.Owns(ctx, "g1", Owner{AnonymousID: "anon-a"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Owns(ctx, "g1", Owner{AnonymousID: "anon-b"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Owns(ctx, "missing", Owner{AnonymousID: "anon-a"})
	require.NoError(t, err)
	assert.False(t, ok)

	// After a claim the account owns it and the cookie no longer does.
	_, err = s.Claim(ctx, "anon-a", u.ID)
	require.NoError(t, err)
	ok, err = s.Owns(ctx, "g1", Owner{UserID: u.ID})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Owns(ctx, "g1", Owner{AnonymousID: "anon-a"})
	require.NoError(t, err)
	assert.False(t, ok)
}
