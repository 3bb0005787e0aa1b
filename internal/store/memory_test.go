package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/game"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := game.New(game.MustParseCode("1234"))

	require.NoError(t, s.Save(ctx, g))
	got, err := s.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, g.ID))
	_, err = s.Get(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateSerialisesGuesses(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := game.New(game.MustParseCode("6666"))
	require.NoError(t, s.Save(ctx, g))

	var wg sync.WaitGroup
	var mu sync.Mutex
	finishedErrs := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, g.ID, func(g *game.Game) error {
				_, _, err := g.ApplyGuess(game.MustParseCode("1111"))
				return err
			})
			if err != nil {
				mu.Lock()
				finishedErrs++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, game.StateLost, g.State())
	assert.Len(t, g.History(), game.MaxGuesses)
	assert.Equal(t, 25-game.MaxGuesses, finishedErrs)
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "nope", func(*game.Game) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Save(ctx, game.New(game.MustParseCode("1111"))), context.Canceled)
}
