// internal/httpserver/server.go
//
// HTTP server wiring for the Mastermind backend.
// Responsibilities:
//   - Router + middleware (request IDs, logging, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - Live rounds are held in a store.Store; the games table only records
//     ownership, guess counts and outcome, never the answer.
//   - Finished rounds stay viewable for finishedTTL, then leave the store.
//   - Only the player who started a round may view or guess on it.
//   - Optional auth decorates requests with user context when a valid token
//     is present; guests get a stable anonymous cookie instead.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/auth"
	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/history"
	"github.com/robalobadob/mastermind/internal/store"
)

// Server bundles the router, live game store and DB-backed services.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	history *history.Store
	users   *auth.Service
	daily   *dailyServer
	src     game.Source // nil = global generator
	now     func() time.Time

	finishedTTL time.Duration
}

// defaultFinishedTTL is how long a finished round stays in the live store.
const defaultFinishedTTL = 10 * time.Minute

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, db *sql.DB) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     cfg,
		store:   st,
		history: history.NewStore(db),
		users:   auth.NewService(db, cfg.JWTSecret, cfg.JWTExpiresDays),
		now:     time.Now,

		finishedTTL: defaultFinishedTTL,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "mastermind-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Game endpoints: guests can play.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/{id}", s.handleGetGame)
		s.mountDaily(r, daily.NewStore(db))
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Answer string `json:"answer"` // optional fixed answer (testing)
}
type newGameRes struct {
	GameID     string `json:"gameId"`
	MaxGuesses int    `json:"maxGuesses"`
}

// handleNewGame creates a live round and records its owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}

	var g *game.Game
	if req.Answer != "" {
		answer, err := game.ParseCode(req.Answer)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g = game.New(answer)
	} else {
		g = game.NewRandom(s.src)
	}

	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	// The row carries ownership, so a round without one is unplayable.
	if err := s.history.Start(r.Context(), g.ID, s.owner(w, r)); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("insert game row")
		if err := s.store.Delete(r.Context(), g.ID); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("drop unowned game")
		}
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, MaxGuesses: game.MaxGuesses})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Hint      string     `json:"hint"`
	Exact     int        `json:"exact"`
	Misplaced int        `json:"misplaced"`
	State     game.State `json:"state"`
	Remaining int        `json:"remaining"`
	Answer    string     `json:"answer,omitempty"` // revealed once the round is lost
}

// handleGuess scores a guess, persists progress and, if the round finished,
// updates the player's stats.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := game.ParseCode(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := s.owner(w, r)
	if !s.ownsGame(w, r, req.GameID, owner) {
		return
	}

	var res guessRes
	err = s.store.Update(r.Context(), req.GameID, func(g *game.Game) error {
		h, state, err := g.ApplyGuess(guess)
		if err != nil {
			return err
		}
		res = guessRes{
			Hint:      h.String(),
			Exact:     h.Exact,
			Misplaced: h.Misplaced,
			State:     state,
			Remaining: g.Remaining(),
		}
		if state == game.StateLost {
			res.Answer = g.Answer().String()
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
		return
	case errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, "game_finished")
		return
	case err != nil:
		log.Error().Err(err).Str("gameId", req.GameID).Msg("apply guess")
		writeError(w, http.StatusInternalServerError, "guess_failed")
		return
	}

	if res.State != game.StatePlaying {
		s.evictLater(req.GameID)
	}

	// Persist counters/history (best effort, non-fatal if it fails).
	if err := s.history.RecordGuess(r.Context(), req.GameID, owner, res.State); err != nil {
		log.Warn().Err(err).Str("gameId", req.GameID).Msg("record guess")
	}
	if res.State != game.StatePlaying && owner.UserID != "" {
		if err := s.users.RecordResult(r.Context(), owner.UserID, res.State == game.StateWon); err != nil {
			log.Warn().Err(err).Str("user", owner.UserID).Msg("bump stats")
		}
	}

	writeJSON(w, http.StatusOK, res)
}

// gameView is returned by GET /game/{id}.
type gameView struct {
	GameID    string     `json:"gameId"`
	State     game.State `json:"state"`
	Remaining int        `json:"remaining"`
	Turns     []turnView `json:"turns"`
	Answer    string     `json:"answer,omitempty"`
}
type turnView struct {
	Guess game.Code `json:"guess"`
	Hint  string    `json:"hint"`
}

// handleGetGame returns the guesses made so far; the answer only once finished.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.ownsGame(w, r, id, s.owner(w, r)) {
		return
	}
	var view gameView
	err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		view = gameView{GameID: g.ID, State: g.State(), Remaining: g.Remaining(), Turns: []turnView{}}
		for _, t := range g.History() {
			view.Turns = append(view.Turns, turnView{Guess: t.Guess, Hint: t.Hint.String()})
		}
		if g.Finished() {
			view.Answer = g.Answer().String()
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ownsGame writes a 404 and reports false unless owner started the round.
// Foreign rounds look exactly like missing ones.
func (s *Server) ownsGame(w http.ResponseWriter, r *http.Request, id string, owner history.Owner) bool {
	ok, err := s.history.Owns(r.Context(), id, owner)
	if err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("check owner")
		writeError(w, http.StatusInternalServerError, "db_error")
		return false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return false
	}
	return true
}

// evictLater drops a finished round from the live store after finishedTTL.
func (s *Server) evictLater(id string) {
	time.AfterFunc(s.finishedTTL, func() {
		if err := s.store.Delete(context.Background(), id); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("evict finished game")
		}
	})
}

// owner identifies the requester for history rows.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) history.Owner {
	if me := currentUser(r); me != nil {
		return history.Owner{UserID: me.ID}
	}
	return history.Owner{AnonymousID: s.ensureAnonID(w, r)}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
