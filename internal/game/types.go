// internal/game/types.go
//
// Core type definitions for the Mastermind game engine.
// Defines:
//   - Code:  a four-digit secret or guess over the alphabet 1–6.
//   - Hint:  exact / misplaced match counts for one guess.
//   - State: coarse lifecycle of a round (playing/won/lost).
//   - Game:  state for a single in-progress or finished round.

package game

import "errors"

const (
	CodeLength = 4  // digits per code
	MinDigit   = 1  // smallest symbol in the alphabet
	MaxDigit   = 6  // largest symbol in the alphabet
	MaxGuesses = 10 // guesses allowed per round
)

// alphabetSize is the number of distinct symbols a Code position can hold.
const alphabetSize = MaxDigit - MinDigit + 1

var (
	ErrCodeLength   = errors.New("code must be exactly 4 digits")
	ErrCodeSymbol   = errors.New("code digits must be between 1 and 6")
	ErrGameFinished = errors.New("game finished")
)

// Code is an ordered sequence of four digit values, each in 1..6.
// It is a value type; copies never alias.
type Code [CodeLength]uint8

// Hint summarises how a guess compares to the answer.
type Hint struct {
	Exact     int `json:"exact"`     // right digit, right position
	Misplaced int `json:"misplaced"` // right digit, wrong position
}

// State represents where a round is in its lifecycle.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Turn records one scored guess.
type Turn struct {
	Guess Code
	Hint  Hint
}

// Game holds the state of a single Mastermind round.
type Game struct {
	ID     string // Unique game identifier (uuid).
	answer Code
	turns  []Turn
	state  State
}
