// AngelaMos | 2026
// token_test.go

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/user-api/internal/config"
	"github.com/carterperez-dev/templates/user-api/internal/core"
)

func newTestSigner(t *testing.T, ttl time.Duration, now func() time.Time) *TokenSigner {
	t.Helper()

	signer, err := NewTokenSigner(config.JWTConfig{
		Secret:            "test-secret-that-is-long-enough-for-hs256",
		Issuer:            "user-api",
		AccessTokenExpire: ttl,
	})
	require.NoError(t, err)
	signer.now = now
	return signer
}

func TestNewTokenSigner_EmptySecret(t *testing.T) {
	_, err := NewTokenSigner(config.JWTConfig{Issuer: "user-api"})
	assert.Error(t, err)
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t, 0, func() time.Time { return now })

	tests := []struct {
		name   string
		claims Claims
	}{
		{
			name:   "session token",
			claims: Claims{Type: TokenTypeAccess, Email: "a@x.com", Role: "user"},
		},
		{
			name:   "reset token",
			claims: Claims{Type: TokenTypeReset, UserID: "u1", Email: "a@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := signer.Sign(tt.claims)
			require.NoError(t, err)

			got, err := signer.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.claims, *got)
		})
	}
}

func TestTokenSigner_UniquePerIssue(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t, 0, func() time.Time { return now })

	claims := Claims{Type: TokenTypeReset, UserID: "u1", Email: "a@x.com"}
	t1, err := signer.Sign(claims)
	require.NoError(t, err)
	t2, err := signer.Sign(claims)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func TestTokenSigner_Expiry(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t, time.Hour, func() time.Time { return now })

	access, err := signer.Sign(Claims{Type: TokenTypeAccess, Email: "a@x.com", Role: "user"})
	require.NoError(t, err)
	reset, err := signer.Sign(Claims{Type: TokenTypeReset, UserID: "u1", Email: "a@x.com"})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)

	_, err = signer.Verify(access)
	assert.ErrorIs(t, err, core.ErrTokenExpired)

	_, err = signer.Verify(reset)
	assert.NoError(t, err)
}

func TestTokenSigner_Rejects(t *testing.T) {
	now := time.Now()
	signer := newTestSigner(t, 0, func() time.Time { return now })

	other, err := NewTokenSigner(config.JWTConfig{
		Secret: "a-completely-different-signing-secret",
		Issuer: "user-api",
	})
	require.NoError(t, err)
	other.now = signer.now

	foreign, err := other.Sign(Claims{Type: TokenTypeAccess, Email: "a@x.com"})
	require.NoError(t, err)

	otherIssuer := newTestSigner(t, 0, signer.now)
	otherIssuer.issuer = "someone-else"
	wrongIss, err := otherIssuer.Sign(Claims{Type: TokenTypeAccess, Email: "a@x.com"})
	require.NoError(t, err)

	noEmail, err := signer.Sign(Claims{Type: TokenTypeAccess})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not-a-jwt",
		"wrong key":     foreign,
		"wrong issuer":  wrongIss,
		"missing email": noEmail,
		"empty":         "",
		"truncated":     foreign[:len(foreign)-4],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := signer.Verify(token)
			assert.ErrorIs(t, err, core.ErrTokenInvalid)
			assert.NotErrorIs(t, err, core.ErrTokenExpired)
		})
	}
}
