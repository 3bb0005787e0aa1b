package daily

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Guesses   int    `json:"guesses"`
	Solved    bool   `json:"solved"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	q, args, err := sq.Select("COUNT(1)").
		From("daily_results").
		Where(sq.Eq{"user_id": userID, "date": date}).
		ToSql()
	if err != nil {
		return false, err
	}
	var cnt int
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores a finished daily round. A second result for the same
// player and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	q, args, err := sq.Insert("daily_results").
		Options("OR IGNORE").
		Columns("user_id", "date", "guesses", "solved", "elapsed_ms").
		Values(r.UserID, r.Date, r.Guesses, r.Solved, r.ElapsedMs).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

type LBRow struct {
	UserID    string `json:"userId"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard lists solvers for a date: fewest guesses first, then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit uint64) ([]LBRow, error) {
	if limit == 0 {
		limit = 20
	}
	q, args, err := sq.Select("user_id", "guesses", "elapsed_ms").
		From("daily_results").
		Where(sq.Eq{"date": date, "solved": true}).
		OrderBy("guesses ASC", "elapsed_ms ASC", "created_at ASC").
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
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
