// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's daily round (creates or reuses session)
//   - POST /daily/guess       → submit a guess for today's round
//   - GET  /daily/leaderboard → top 20 solvers for today (or a given date)
//
// Each player gets one attempt per day (enforced by DB + in-memory session).
// Sessions live in memory during play and are dropped once the result is
// persisted, won or lost. A session keeps the date it started on, so a round
// may run past midnight. Everyone shares the same code, derived from
// date + salt.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // in-progress sessions keyed by game ID
	active   map[string]string        // playerID|date -> game ID
	mu       sync.Mutex               // guards both maps and the games inside them
}

// dailySession holds transient state for an in-progress daily round.
type dailySession struct {
	Game   *game.Game
	Player string
	Date   string
	Start  time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router, st *daily.Store) {
	dd := &dailyServer{
		srv:      s,
		store:    st,
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]*dailySession),
		active:   make(map[string]string),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// playerID returns the authenticated user ID, or the anonymous cookie ID.
func (d *dailyServer) playerID(w http.ResponseWriter, r *http.Request) string {
	if me := currentUser(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID     string `json:"gameId"`
	Date       string `json:"date"`
	Played     bool   `json:"played"`
	MaxGuesses int    `json:"maxGuesses"`
}

// handleNew creates or reuses a daily session for the current date.
//   - If the player already has a DB row for today → Played=true.
//   - Otherwise create/reuse an in-memory session and return its GameID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	pid := d.playerID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)

	played, err := d.store.AlreadyPlayed(r.Context(), pid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true, MaxGuesses: game.MaxGuesses})
		return
	}

	key := pid + "|" + date
	d.mu.Lock()
	d.pruneLocked(now)
	sess, ok := d.sessions[d.active[key]]
	if !ok {
		sess = &dailySession{
			Game:   game.New(daily.CodeFor(now, d.salt)),
			Player: pid,
			Date:   date,
			Start:  now,
		}
		d.sessions[sess.Game.ID] = sess
		d.active[key] = sess.Game.ID
	}
	d.mu.Unlock()

	writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.Game.ID, Date: date, MaxGuesses: game.MaxGuesses})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type dailyGuessRes struct {
	Hint      string `json:"hint"`
	Exact     int    `json:"exact"`
	Misplaced int    `json:"misplaced"`
	State     string `json:"state"` // playing | won | lost | locked
	Guesses   int    `json:"guesses"`
	Remaining int    `json:"remaining"`
}

// handleGuess validates and applies a guess for today's daily session and
// persists the result once the round ends.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	pid := d.playerID(w, r)

	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := game.ParseCode(p.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := d.srv.now()

	d.mu.Lock()
	sess, ok := d.sessions[p.GameID]
	if !ok || sess.Player != pid {
		d.mu.Unlock()
		d.noSession(w, r, pid, now)
		return
	}
	g := sess.Game
	h, state, err := g.ApplyGuess(guess)
	guesses := len(g.History())
	remaining := g.Remaining()
	d.mu.Unlock()

	if errors.Is(err, game.ErrGameFinished) {
		writeJSON(w, http.StatusOK, dailyGuessRes{State: "locked", Guesses: guesses})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "guess_failed")
		return
	}

	if state != game.StatePlaying {
		res := daily.Result{
			UserID:    pid,
			Date:      sess.Date,
			Guesses:   guesses,
			Solved:    state == game.StateWon,
			ElapsedMs: now.Sub(sess.Start).Milliseconds(),
		}
		// On failure the finished session stays and keeps answering "locked".
		if err := d.store.InsertResult(r.Context(), res); err != nil {
			log.Warn().Err(err).Str("player", pid).Msg("insert daily result")
		} else {
			d.drop(sess)
		}
	}

	writeJSON(w, http.StatusOK, dailyGuessRes{
		Hint:      h.String(),
		Exact:     h.Exact,
		Misplaced: h.Misplaced,
		State:     string(state),
		Guesses:   guesses,
		Remaining: remaining,
	})
}

// noSession answers a guess without a live session: "locked" if the player
// already has today's result, 409 otherwise.
func (d *dailyServer) noSession(w http.ResponseWriter, r *http.Request, pid string, now time.Time) {
	played, err := d.store.AlreadyPlayed(r.Context(), pid, daily.DateKey(now))
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyGuessRes{State: "locked"})
		return
	}
	writeError(w, http.StatusConflict, "no_session")
}

// drop forgets a session whose result is stored.
func (d *dailyServer) drop(sess *dailySession) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, sess.Game.ID)
	key := sess.Player + "|" + sess.Date
	if d.active[key] == sess.Game.ID {
		delete(d.active, key)
	}
}

// pruneLocked drops sessions started before yesterday. Yesterday's survive
// so a round begun just before midnight can still be finished.
func (d *dailyServer) pruneLocked(now time.Time) {
	cutoff := daily.DateKey(now.AddDate(0, 0, -1))
	for id, sess := range d.sessions {
		if sess.Date < cutoff {
			delete(d.sessions, id)
			delete(d.active, sess.Player+"|"+sess.Date)
		}
	}
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
