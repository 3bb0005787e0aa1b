package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/db"
)

func TestDateKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestCodeForIsDeterministic(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)

	c := CodeFor(day, "salt")
	require.NoError(t, c.Validate())
	assert.Equal(t, c, CodeFor(later, "salt"), "same UTC day, same code")

	// Different salts or days should not all collide.
	distinct := map[string]bool{}
	for i := 0; i < 30; i++ {
		distinct[CodeFor(day.AddDate(0, 0, i), "salt").String()] = true
	}
	assert.Greater(t, len(distinct), 20)
	assert.NotEqual(t, Seed(day, "a"), Seed(day, "b"))
}

func TestStoreResultsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenMigrated(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	defer conn.Close()
	s := NewStore(conn)

	const date = "2026-10-19"
	played, err := s.AlreadyPlayed(ctx, "u1", date)
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: date, Guesses: 5, Solved: true, ElapsedMs: 9000}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u2", Date: date, Guesses: 3, Solved: true, ElapsedMs: 20000}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u3", Date: date, Guesses: 5, Solved: true, ElapsedMs: 4000}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u4", Date: date, Guesses: 10, Solved: false, ElapsedMs: 1000}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u5", Date: "2026-10-18", Guesses: 1, Solved: true, ElapsedMs: 10}))

	// Duplicate insert is ignored.
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: date, Guesses: 1, Solved: true, ElapsedMs: 1}))

	played, err = s.AlreadyPlayed(ctx, "u4", date)
	require.NoError(t, err)
	assert.True(t, played)

	top, err := s.Leaderboard(ctx, date, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"u2", "u3", "u1"}, []string{top[0].UserID, top[1].UserID, top[2].UserID})
	assert.Equal(t, 5, top[2].Guesses)

	top, err = s.Leaderboard(ctx, date, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
