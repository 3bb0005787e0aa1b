// internal/game/generate.go
//
// Random answer generation.
//
// Generate draws every position independently and uniformly from 1..6,
// so repeated digits are allowed. The random source is injected: tests pass
// a seeded source, the server and console pass nil and get the
// package-level math/rand/v2 generator, which is safe for concurrent use.

package game

import "math/rand/v2"

// Source is the slice of *rand.Rand that Generate needs.
type Source interface {
	IntN(n int) int
}

// globalSource adapts the package-level generator to Source.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededSource returns a deterministic Source for a seed.
// Not safe for concurrent use; create one per goroutine.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate produces a random Code. A nil src uses the global generator.
func Generate(src Source) Code {
	if src == nil {
		src = globalSource{}
	}
	var c Code
	for i := range c {
		c[i] = uint8(MinDigit + src.IntN(alphabetSize))
	}
	return c
}
