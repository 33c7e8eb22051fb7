// AngelaMos | 2026
// token.go

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/user-api/internal/config"
	"github.com/carterperez-dev/templates/user-api/internal/core"
)

const (
	TokenTypeAccess = "access"
	TokenTypeReset  = "reset"
)

// Claims is the payload carried by every token this service signs.
// Session tokens carry Email and Role; reset tokens carry UserID and Email.
type Claims struct {
	Type   string
	UserID string
	Email  string
	Role   string
}

type TokenSigner struct {
	key       jwk.Key
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenSigner(cfg config.JWTConfig) (*TokenSigner, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token signer: empty secret")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	return &TokenSigner{
		key:       key,
		issuer:    cfg.Issuer,
		accessTTL: cfg.AccessTokenExpire,
		now:       time.Now,
	}, nil
}

// Sign builds and signs a token for claims. Reset tokens never get an exp
// claim; their lifetime is the expiry persisted next to the user record.
func (s *TokenSigner) Sign(claims Claims) (string, error) {
	now := s.now()

	builder := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(s.issuer).
		IssuedAt(now).
		Claim("type", claims.Type).
		Claim("email", claims.Email)

	if claims.UserID != "" {
		builder = builder.Subject(claims.UserID)
	}
	if claims.Role != "" {
		builder = builder.Claim("role", claims.Role)
	}
	if claims.Type == TokenTypeAccess && s.accessTTL > 0 {
		builder = builder.Expiration(now.Add(s.accessTTL))
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks the signature, issuer and (when present) expiry, and
// returns the decoded claims. Failures wrap core.ErrTokenInvalid or
// core.ErrTokenExpired.
func (s *TokenSigner) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var claims Claims
	if err := token.Get("type", &claims.Type); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing type claim: %w",
			core.ErrTokenInvalid,
		)
	}

	if err := token.Get("email", &claims.Email); err != nil ||
		claims.Email == "" {
		return nil, fmt.Errorf(
			"verify token: missing email claim: %w",
			core.ErrTokenInvalid,
		)
	}

	if sub, ok := token.Subject(); ok {
		claims.UserID = sub
	}

	if token.Has("role") {
		//nolint:errcheck // role is optional on reset tokens
		_ = token.Get("role", &claims.Role)
	}

	return &claims, nil
}

func isTokenExpiredError(err error) bool {
	return errors.Is(err, jwt.TokenExpiredError())
}
