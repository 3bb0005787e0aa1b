// internal/game/engine.go
//
// Core game engine for a single Mastermind round.
// Responsibilities:
//   - Create new rounds with a fixed or random answer.
//   - Score guesses using the two-pass exact/misplaced algorithm.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - Input validation (alphabet, length) happens in ParseCode; the engine
//     works on Code values only.
//   - Game is not safe for concurrent use; callers serialise access.
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New constructs a round for a known answer.
func New(answer Code) *Game {
	return &Game{
		ID:     uuid.NewString(),
		answer: answer,
		turns:  make([]Turn, 0, MaxGuesses),
		state:  StatePlaying,
	}
}

// NewRandom constructs a round with an answer drawn from src (nil = global).
func NewRandom(src Source) *Game {
	return New(Generate(src))
}

// ApplyGuess scores a guess and advances the round.
//
// State transitions:
//   - Four exact matches → StateWon.
//   - Else if MaxGuesses have been used → StateLost.
func (g *Game) ApplyGuess(guess Code) (Hint, State, error) {
	if g.state != StatePlaying {
		return Hint{}, g.state, ErrGameFinished
	}
	h, err := Score(guess, g.answer)
	if err != nil {
		return Hint{}, g.state, err
	}
	g.turns = append(g.turns, Turn{Guess: guess, Hint: h})

	if h.Solved() {
		g.state = StateWon
	} else if len(g.turns) >= MaxGuesses {
		g.state = StateLost
	}
	return h, g.state, nil
}

// State reports the current lifecycle state.
func (g *Game) State() State { return g.state }

// Finished reports whether the round is over.
func (g *Game) Finished() bool { return g.state != StatePlaying }

// Remaining is the number of guesses left.
func (g *Game) Remaining() int { return MaxGuesses - len(g.turns) }

// Answer returns the secret. Callers must not reveal it mid-round.
func (g *Game) Answer() Code { return g.answer }

// History returns a copy of the scored guesses so far.
func (g *Game) History() []Turn {
	out := make([]Turn, len(g.turns))
	copy(out, g.turns)
	return out
}

// Score compares guess against answer.
//
// Pass 1:
//   - Count exact matches.
//   - Pool the remaining (non-exact) symbols of guess and answer by value.
//
// Pass 2:
//   - For each symbol, min(guess pool, answer pool) are misplaced matches.
//
// The pools cap every symbol at the number of times it actually occurs on
// both sides, so repeated digits are never double counted.
func Score(guess, answer Code) (Hint, error) {
	if err := guess.Validate(); err != nil {
		return Hint{}, fmt.Errorf("guess: %w", err)
	}
	if err := answer.Validate(); err != nil {
		return Hint{}, fmt.Errorf("answer: %w", err)
	}

	var h Hint
	var guessPool, answerPool [alphabetSize]int

	// First pass: exact matches and pools for everything else.
	for i := 0; i < CodeLength; i++ {
		if guess[i] == answer[i] {
			h.Exact++
			continue
		}
		guessPool[guess[i]-MinDigit]++
		answerPool[answer[i]-MinDigit]++
	}

	// Second pass: misplaced matches from the leftover pools.
	for s := 0; s < alphabetSize; s++ {
		h.Misplaced += min(guessPool[s], answerPool[s])
	}
	return h, nil
}

// Solved reports whether every position matched exactly.
func (h Hint) Solved() bool { return h.Exact == CodeLength }

// String renders the hint as all '+' (exact) followed by all '-' (misplaced).
// No matches at all renders as the empty string.
func (h Hint) String() string {
	return strings.Repeat("+", h.Exact) + strings.Repeat("-", h.Misplaced)
}
