package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(TokenConfig{Secret: []byte("secret")})

	id := uuid.New()
	token, err := m.Generate(id)
	require.NoError(t, err)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager(TokenConfig{Secret: []byte("secret")})
	verifier := NewTokenManager(TokenConfig{Secret: []byte("other")})

	token, err := issuer.Generate(uuid.New())
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager(TokenConfig{Secret: []byte("secret"), TTL: -time.Minute})

	token, err := m.Generate(uuid.New())
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager(TokenConfig{Secret: []byte("secret")})
	_, err := m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
