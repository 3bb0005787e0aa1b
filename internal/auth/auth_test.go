package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/db"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	conn, err := db.OpenMigrated(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewService(conn, "test-secret", 1), conn
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		user, pw string
		ok       bool
	}{
		{"valid", "alice_1", "password1", true},
		{"short username", "al", "password1", false},
		{"long username", "abcdefghijklmnopqrstuvwxy", "password1", false},
		{"bad chars", "al ice", "password1", false},
		{"short password", "alice", "short", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.user, tt.pw)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	u, err := s.Create(ctx, "  Alice  ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)
	assert.NotEmpty(t, u.ID)

	_, err = s.Create(ctx, "alice", "another password")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	got, err := s.Authenticate(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "bob", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecordResult(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	u, err := s.Create(ctx, "carol", "password123")
	require.NoError(t, err)

	require.NoError(t, s.RecordResult(ctx, u.ID, true))
	require.NoError(t, s.RecordResult(ctx, u.ID, true))
	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.GamesPlayed)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 2, got.Streak)

	require.NoError(t, s.RecordResult(ctx, u.ID, false))
	got, err = s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.GamesPlayed)
	assert.Equal(t, 2, got.Wins)
	assert.Equal(t, 0, got.Streak)

	assert.ErrorIs(t, s.RecordResult(ctx, "ghost", true), ErrUserNotFound)
}

func TestTokenRoundTrip(t *testing.T) {
	s, _ := newTestService(t)

	tok, exp, err := s.SignToken("id-1", "dave")
	require.NoError(t, err)
	assert.False(t, exp.IsZero())

	c, err := s.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, Claims{ID: "id-1", Username: "dave"}, c)

	other := NewService(nil, "other-secret", 1)
	_, err = other.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsMissingClaims(t *testing.T) {
	s, _ := newTestService(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "x"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = s.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
