// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/templates/user-api/internal/core"
	"github.com/carterperez-dev/templates/user-api/internal/mail"
	"github.com/carterperez-dev/templates/user-api/internal/metrics"
	"github.com/carterperez-dev/templates/user-api/internal/middleware"
)

const DefaultResetTokenTTL = 15 * time.Minute

var (
	ErrInvalidEmail    = errors.New("credentials invalid: email")
	ErrInvalidPassword = errors.New("credentials invalid: password")
	ErrEmailNotFound   = errors.New("email not found")
	ErrInvalidReset    = errors.New("invalid reset token")
)

type UserInfo struct {
	ID                  string
	FirstName           string
	LastName            string
	Email               string
	Phone               string
	PasswordHash        string
	Role                string
	IsActive            bool
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
}

// UserStore is the slice of user persistence the auth flows need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	SetResetToken(
		ctx context.Context,
		id, tokenHash string,
		expiresAt time.Time,
	) error
	ResetPassword(
		ctx context.Context,
		id, tokenHash, passwordHash string,
		now time.Time,
	) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

type Service struct {
	users    UserStore
	signer   *TokenSigner
	mailer   mail.Mailer
	hasher   PasswordHasher
	resetTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithHasher(h PasswordHasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func NewService(
	users UserStore,
	signer *TokenSigner,
	mailer mail.Mailer,
	opts ...Option,
) *Service {
	s := &Service{
		users:    users,
		signer:   signer,
		mailer:   mailer,
		hasher:   core.Argon2Hasher{},
		resetTTL: DefaultResetTokenTTL,
		now:      time.Now,
		logger:   slog.Default(),
		tracer:   otel.Tracer("user-api/auth"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	ctx, span := s.tracer.Start(ctx, "auth.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalidEmail).Inc()
			return nil, ErrInvalidEmail
		}
		return nil, s.fail(span, metrics.LoginAttempts, fmt.Errorf("get user: %w", err))
	}

	valid, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, s.fail(span, metrics.LoginAttempts, fmt.Errorf("verify password: %w", err))
	}

	if !valid {
		metrics.LoginAttempts.WithLabelValues(metrics.OutcomeInvalidPass).Inc()
		return nil, ErrInvalidPassword
	}

	token, err := s.signer.Sign(Claims{
		Type:  TokenTypeAccess,
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		return nil, s.fail(span, metrics.LoginAttempts, fmt.Errorf("sign session token: %w", err))
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return &LoginResponse{
		AccessToken: token,
		StatusCode:  201,
		Data:        toUserResponse(user),
	}, nil
}

// ForgotPassword issues a reset token for email and mails the link built
// from baseURL. An undelivered message is reported exactly like an unknown
// address.
func (s *Service) ForgotPassword(
	ctx context.Context,
	email, baseURL string,
) error {
	ctx, span := s.tracer.Start(ctx, "auth.ForgotPassword")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.ForgotPasswordRequests.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return ErrEmailNotFound
		}
		return s.fail(span, metrics.ForgotPasswordRequests, fmt.Errorf("get user: %w", err))
	}

	token, err := s.signer.Sign(Claims{
		Type:   TokenTypeReset,
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return s.fail(span, metrics.ForgotPasswordRequests, fmt.Errorf("sign reset token: %w", err))
	}

	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, core.HashToken(token), expiresAt); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.ForgotPasswordRequests.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return ErrEmailNotFound
		}
		return s.fail(span, metrics.ForgotPasswordRequests, fmt.Errorf("store reset token: %w", err))
	}

	link := ResetLink(baseURL, token)
	delivery, err := s.mailer.Send(ctx, mail.ResetPasswordMessage(user.Email, link))
	if err != nil {
		return s.fail(span, metrics.ForgotPasswordRequests, fmt.Errorf("send reset mail: %w", err))
	}

	if !delivery.Delivered {
		s.logger.WarnContext(ctx, "reset link not delivered",
			slog.String("user_id", user.ID),
		)
		metrics.ForgotPasswordRequests.WithLabelValues(metrics.OutcomeNotDelivered).Inc()
		return ErrEmailNotFound
	}

	s.logger.InfoContext(ctx, "password reset issued",
		slog.String("user_id", user.ID),
		slog.Time("expires_at", expiresAt),
	)
	metrics.ForgotPasswordRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return nil
}

// ResetPassword consumes token. A token that fails signature verification,
// or whose user no longer exists, is ErrInvalidReset. Every other failure
// (stale token, expired window, confirmation mismatch) yields
// ResetResult{Expired: true} with no error.
func (s *Service) ResetPassword(
	ctx context.Context,
	token string,
	req ResetPasswordRequest,
) (ResetResult, error) {
	ctx, span := s.tracer.Start(ctx, "auth.ResetPassword")
	defer span.End()

	claims, err := s.signer.Verify(token)
	if err != nil || claims.Type != TokenTypeReset {
		metrics.PasswordResets.WithLabelValues(metrics.OutcomeInvalidToken).Inc()
		return ResetResult{}, ErrInvalidReset
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.PasswordResets.WithLabelValues(metrics.OutcomeInvalidToken).Inc()
			return ResetResult{}, ErrInvalidReset
		}
		return ResetResult{}, s.fail(span, metrics.PasswordResets, fmt.Errorf("get user: %w", err))
	}

	now := s.now()
	tokenMatches := user.ResetTokenHash != nil &&
		core.CompareTokenHash(token, *user.ResetTokenHash)
	notExpired := user.ResetTokenExpiresAt != nil &&
		!user.ResetTokenExpiresAt.Before(now)
	confirmed := req.Password != "" && req.Password == req.ConfirmPassword

	if !tokenMatches || !notExpired || !confirmed {
		metrics.PasswordResets.WithLabelValues(metrics.OutcomeLinkExpired).Inc()
		return ResetResult{Expired: true}, nil
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return ResetResult{}, s.fail(span, metrics.PasswordResets, fmt.Errorf("hash password: %w", err))
	}

	err = s.users.ResetPassword(ctx, user.ID, core.HashToken(token), hash, now)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			metrics.PasswordResets.WithLabelValues(metrics.OutcomeLinkExpired).Inc()
			return ResetResult{Expired: true}, nil
		}
		return ResetResult{}, s.fail(span, metrics.PasswordResets, fmt.Errorf("reset password: %w", err))
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("user_id", user.ID),
	)
	metrics.PasswordResets.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return ResetResult{}, nil
}

// VerifyAccessToken validates a session token and re-loads the user it
// names, so tokens for removed accounts stop working immediately.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.signer.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != TokenTypeAccess {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	user, err := s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrUnauthorized)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	return &middleware.AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

type ResetResult struct {
	Expired bool
}

func ResetLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/password-reset/" + token
}

func (s *Service) fail(
	span trace.Span,
	counter *prometheus.CounterVec,
	err error,
) error {
	counter.WithLabelValues(metrics.OutcomeInternalFailed).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
