package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserRoundTrip(t *testing.T) {
	p := NewParser("secret")
	token, err := p.Sign(Claims{
		Email: "op@pm.rj.gov.br",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	claims, err := p.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestParserRejects(t *testing.T) {
	p := NewParser("secret")

	other, err := NewParser("other").Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})
	require.NoError(t, err)
	_, err = p.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := p.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	require.NoError(t, err)
	_, err = p.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := p.Sign(Claims{Role: "user"})
	require.NoError(t, err)
	_, err = p.Parse(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
