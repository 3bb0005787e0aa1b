// internal/console/console.go
//
// Text-interface game loop.
// Responsibilities:
//   - Screen state machine: Game → PlayAgain → Game | Quit.
//   - Prompt for guesses, handling 'h' (help) and 'q' (quit).
//   - Print hints, optionally colourised, and the end-of-round message.
//
// Input and output are injected so tests can script a whole session.
// End of input is treated like 'q'. Lines are read on a separate goroutine
// so a cancelled context interrupts a pending prompt.
// A Console runs once; call Run a single time per reader.

package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/TwiN/go-color"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/assets"
	"github.com/robalobadob/mastermind/internal/game"
)

// Screen is the console's top-level state.
type Screen int

const (
	ScreenGame Screen = iota
	ScreenPlayAgain
	ScreenQuit
)

// Console plays rounds over a reader/writer pair.
type Console struct {
	in      *bufio.Scanner
	lines   <-chan string
	eof     bool  // lines closed
	scanErr error // valid once eof is set
	out     io.Writer
	src     game.Source
	colour  bool
	answer  *game.Code // fixed answer for scripted sessions
	help    string
}

// Option customises a Console.
type Option func(*Console)

// WithSource sets the random source used for answers.
func WithSource(src game.Source) Option { return func(c *Console) { c.src = src } }

// WithColour enables ANSI colours in hints.
func WithColour(on bool) Option { return func(c *Console) { c.colour = on } }

// WithAnswer fixes the answer of every round.
func WithAnswer(code game.Code) Option { return func(c *Console) { c.answer = &code } }

// New constructs a Console reading from r and writing to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Console {
	c := &Console{
		in:   bufio.NewScanner(r),
		out:  w,
		help: assets.HelpText(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run drives screens until the player quits, input ends, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.lines = c.readLines(ctx)

	screen := ScreenGame
	for screen != ScreenQuit {
		switch screen {
		case ScreenGame:
			screen = c.playRound(ctx)
		case ScreenPlayAgain:
			screen = c.playAgain(ctx)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.eof {
		return c.scanErr
	}
	return nil
}

// readLines feeds scanned lines to the returned channel until input ends
// or ctx is done.
func (c *Console) readLines(ctx context.Context) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for c.in.Scan() {
			select {
			case ch <- c.in.Text():
			case <-ctx.Done():
				return
			}
		}
		c.scanErr = c.in.Err()
	}()
	return ch
}

// playRound runs one round and returns the next screen.
func (c *Console) playRound(ctx context.Context) Screen {
	c.println("Welcome to Mastermind!")
	c.println(c.help)

	var g *game.Game
	if c.answer != nil {
		g = game.New(*c.answer)
	} else {
		g = game.NewRandom(c.src)
	}

	for !g.Finished() {
		cmd, guess, ok := c.readGuess(ctx)
		if !ok {
			return ScreenQuit
		}
		switch cmd {
		case "h":
			c.println(c.help)
			continue
		case "q":
			return ScreenQuit
		}

		h, state, err := g.ApplyGuess(guess)
		if err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("apply guess")
			return ScreenQuit
		}

		switch state {
		case game.StateWon:
			c.println("That's correct! Horray!")
		case game.StateLost:
			c.printf("Incorrect! Here's a hint: [%s]\n", c.renderHint(h))
			c.printf("Out of guesses! The answer was %s.\n", g.Answer())
		default:
			c.printf("Incorrect! Here's a hint: [%s] (%s left)\n", c.renderHint(h), guessesLeft(g.Remaining()))
		}
	}

	log.Debug().
		Str("gameId", g.ID).
		Str("state", string(g.State())).
		Int("guesses", len(g.History())).
		Msg("round finished")
	return ScreenPlayAgain
}

// playAgain asks whether to start another round.
func (c *Console) playAgain(ctx context.Context) Screen {
	c.println("Well that was fun! Want to play again? (Type 'y' for yes or 'n' for no)")
	for {
		line, ok := c.prompt(ctx)
		if !ok {
			return ScreenQuit
		}
		switch strings.ToLower(line) {
		case "y":
			return ScreenGame
		case "n":
			return ScreenQuit
		default:
			c.println("Sorry, I couldn't understand your input. Please type 'Y' to play again, or 'n' to quit.")
		}
	}
}

// readGuess prompts until it gets a command ('h' or 'q') or a valid code.
// ok is false when input is exhausted or ctx is done.
func (c *Console) readGuess(ctx context.Context) (cmd string, guess game.Code, ok bool) {
	c.println("\nTake a guess!")
	for {
		line, more := c.prompt(ctx)
		if !more {
			return "", guess, false
		}
		if lower := strings.ToLower(line); lower == "h" || lower == "q" {
			return lower, guess, true
		}
		if code, err := game.ParseCode(line); err == nil {
			return "", code, true
		}
		c.println("I couldn't understand your input. If you're confused, type 'h' for help.")
	}
}

// prompt prints ">" and waits for one trimmed line. It reports false at
// end of input or once ctx is done, even if a line arrived meanwhile.
func (c *Console) prompt(ctx context.Context) (string, bool) {
	fmt.Fprint(c.out, ">")
	if ctx.Err() != nil {
		return "", false
	}
	select {
	case <-ctx.Done():
		return "", false
	case line, open := <-c.lines:
		if !open {
			c.eof = true
			return "", false
		}
		if ctx.Err() != nil {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

func guessesLeft(n int) string {
	if n == 1 {
		return "1 guess"
	}
	return fmt.Sprintf("%d guesses", n)
}

// renderHint colours '+' green and '-' yellow when colour is enabled.
func (c *Console) renderHint(h game.Hint) string {
	if !c.colour {
		return h.String()
	}
	var b strings.Builder
	if h.Exact > 0 {
		b.WriteString(color.Ize(color.Green, strings.Repeat("+", h.Exact)))
	}
	if h.Misplaced > 0 {
		b.WriteString(color.Ize(color.Yellow, strings.Repeat("-", h.Misplaced)))
	}
	return b.String()
}

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

func (c *Console) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }
