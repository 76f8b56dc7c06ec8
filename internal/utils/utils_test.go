package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("popcorn", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "popcorn", hash)

	other, err := HashPassword("popcorn", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")

	assert.True(t, VerifyPassword(hash, "popcorn"))
	assert.False(t, VerifyPassword(hash, "nachos"))
	assert.False(t, VerifyPassword("not-a-hash", "popcorn"))
	assert.False(t, VerifyPassword("", ""))
}

func TestHashPasswordRejectsLongInput(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	_, err := HashPassword(string(long), bcrypt.MinCost)
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	raw, err := NewSessionToken("secret", 42, "sid-1", exp)
	require.NoError(t, err)

	claims, err := ParseSessionToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestParseSessionTokenRejects(t *testing.T) {
	good, err := NewSessionToken("secret", 1, "sid", time.Now().Add(time.Hour))
	require.NoError(t, err)
	expired, err := NewSessionToken("secret", 1, "sid", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	noID, err := NewSessionToken("secret", 1, "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "1",
		ID:        "sid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	foreignRaw, err := foreign.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		secret string
		raw    string
	}{
		"wrong secret":   {"other", good},
		"expired":        {"secret", expired},
		"missing jti":    {"secret", noID},
		"foreign issuer": {"secret", foreignRaw},
		"garbage":        {"secret", "abc.def.ghi"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSessionToken(tt.secret, tt.raw)
			assert.ErrorIs(t, err, ErrInvalidSessionToken)
		})
	}
}
