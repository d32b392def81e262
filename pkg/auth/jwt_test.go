package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshelf/shelfweb/pkg/auth"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-only-secret"))
	require.NoError(t, err)
	return tok
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(10 * time.Hour).Truncate(time.Second)
	tok := sign(t, jwt.MapClaims{"sub": "manager@shop.io", "exp": exp.Unix()})

	got, err := auth.Expiry(tok)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
	assert.Equal(t, "manager@shop.io", auth.Subject(tok))
}

func TestExpiry_OpaqueToken(t *testing.T) {
	_, err := auth.Expiry("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrNoExpiry)
	assert.Empty(t, auth.Subject("not-a-jwt"))
}

func TestExpiry_MissingClaim(t *testing.T) {
	tok := sign(t, jwt.MapClaims{"sub": "x"})
	_, err := auth.Expiry(tok)
	assert.ErrorIs(t, err, auth.ErrNoExpiry)
}
