// internal/history/history.go
//
// Durable per-player game history (games table).
//
// Rows are owned either by a user account or by an anonymous cookie ID.
// The secret answer is never written to the database.

package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/robalobadob/mastermind/internal/game"
)

const (
	table          = "games"
	colID          = "id"
	colUserID      = "user_id"
	colAnonymousID = "anonymous_id"
	colStatus      = "status"
	colGuesses     = "guesses"
	colStartedAt   = "started_at"
	colFinishedAt  = "finished_at"
)

// Owner identifies who a row belongs to. Exactly one field is set.
type Owner struct {
	UserID      string
	AnonymousID string
}

func (o Owner) where() sq.Eq {
	if o.UserID != "" {
		return sq.Eq{colUserID: o.UserID}
	}
	return sq.Eq{colAnonymousID: o.AnonymousID}
}

// Row is one game as listed by GET /games/mine.
type Row struct {
	ID         string     `json:"id"`
	Status     game.State `json:"status"`
	Guesses    int        `json:"guesses"`
	StartedAt  string     `json:"startedAt"`
	FinishedAt string     `json:"finishedAt,omitempty"`
}

// Store reads and writes the games table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Start inserts the row for a freshly created round.
func (s *Store) Start(ctx context.Context, gameID string, owner Owner) error {
	var userID, anonID any
	if owner.UserID != "" {
		userID = owner.UserID
	} else {
		anonID = owner.AnonymousID
	}
	q, args, err := sq.Insert(table).
		Columns(colID, colUserID, colAnonymousID, colStatus, colGuesses, colStartedAt).
		Values(gameID, userID, anonID, string(game.StatePlaying), 0, now()).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// RecordGuess bumps the guess counter and, once the round is over, stores
// the final status.
func (s *Store) RecordGuess(ctx context.Context, gameID string, owner Owner, state game.State) error {
	b := sq.Update(table).
		Set(colGuesses, sq.Expr(colGuesses+" + 1")).
		Where(sq.Eq{colID: gameID}).
		Where(owner.where())
	if state != game.StatePlaying {
		b = b.Set(colStatus, string(state)).Set(colFinishedAt, now())
	}
	q, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// Owns reports whether the round belongs to owner.
func (s *Store) Owns(ctx context.Context, gameID string, owner Owner) (bool, error) {
	q, args, err := sq.Select("1").
		From(table).
		Where(sq.Eq{colID: gameID}).
		Where(owner.where()).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}
	var one int
	switch err := s.db.QueryRowContext(ctx, q, args...).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// ListByUser returns the most recent games of a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit uint64) ([]Row, error) {
	if limit == 0 {
		limit = 50
	}
	q, args, err := sq.Select(colID, colStatus, colGuesses, colStartedAt, "COALESCE("+colFinishedAt+", '')").
		From(table).
		Where(sq.Eq{colUserID: userID}).
		OrderBy(colStartedAt + " DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		var status string
		if err := rows.Scan(&r.ID, &status, &r.Guesses, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Status = game.State(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim transfers anonymous games to a user account after login/signup.
func (s *Store) Claim(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	q, args, err := sq.Update(table).
		Set(colUserID, userID).
		Set(colAnonymousID, nil).
		Where(sq.Eq{colAnonymousID: anonID}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// timeLayout is fixed-width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func now() string { return time.Now().UTC().Format(timeLayout) }
