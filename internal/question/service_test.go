package question

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmentforge/escape-api/internal/game"
)

type stubSource struct {
	bank    []game.Question
	err     error
	fetches int
}

func (s *stubSource) Fetch(_ context.Context) ([]game.Question, error) {
	s.fetches++
	return s.bank, s.err
}

type memoryCache struct {
	bank []game.Question
	err  error
}

func (c *memoryCache) Get(_ context.Context) ([]game.Question, error) {
	return c.bank, c.err
}

func (c *memoryCache) Set(_ context.Context, bank []game.Question) error {
	c.bank = bank
	return nil
}

func validBank(n int) []game.Question {
	bank := make([]game.Question, n)
	for i := range bank {
		bank[i] = game.Question{
			ID:           i,
			Prompt:       "prompt",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
		}
	}
	return bank
}

func TestLoadPrefersCache(t *testing.T) {
	source := &stubSource{bank: validBank(50)}
	cache := &memoryCache{bank: validBank(50)}
	svc := NewService(source, cache, zerolog.New(io.Discard))

	require.NoError(t, svc.Load(context.Background()))
	assert.Zero(t, source.fetches, "cache hit must not touch the source")
	assert.Len(t, svc.Bank(), 50)
}

func TestLoadFallsBackToSource(t *testing.T) {
	source := &stubSource{bank: validBank(50)}
	cache := &memoryCache{err: errors.New("redis down")}
	svc := NewService(source, cache, zerolog.New(io.Discard))

	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, 1, source.fetches)
	assert.Len(t, svc.Bank(), 50)
}

func TestReloadBypassesCacheAndUpdatesIt(t *testing.T) {
	source := &stubSource{bank: validBank(50)}
	cache := &memoryCache{bank: validBank(10)}
	svc := NewService(source, cache, zerolog.New(io.Discard))

	require.NoError(t, svc.Reload(context.Background()))
	assert.Equal(t, 1, source.fetches)
	assert.Len(t, cache.bank, 50, "reload refreshes the cache")
}

func TestInstallTruncatesOversizedBank(t *testing.T) {
	source := &stubSource{bank: validBank(60)}
	svc := NewService(source, nil, zerolog.New(io.Discard))

	require.NoError(t, svc.Load(context.Background()))
	assert.Len(t, svc.Bank(), game.DoorCount)
}

func TestShortBankIsTolerated(t *testing.T) {
	source := &stubSource{bank: validBank(15)}
	svc := NewService(source, nil, zerolog.New(io.Discard))

	require.NoError(t, svc.Load(context.Background()))
	assert.Len(t, svc.Bank(), 15)
}

func TestLoadRejectsInvalidBank(t *testing.T) {
	bad := validBank(3)
	bad[1].CorrectIndex = 9
	source := &stubSource{bank: bad}
	svc := NewService(source, nil, zerolog.New(io.Discard))

	assert.Error(t, svc.Load(context.Background()))
	assert.Empty(t, svc.Bank())
}

func TestValidateBank(t *testing.T) {
	assert.NoError(t, ValidateBank(validBank(5)))
	assert.NoError(t, ValidateBank(nil))

	tooFew := validBank(2)
	tooFew[0].Options = []string{"only"}
	assert.Error(t, ValidateBank(tooFew))

	noPrompt := validBank(2)
	noPrompt[1].Prompt = ""
	assert.Error(t, ValidateBank(noPrompt))
}
