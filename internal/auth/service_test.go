// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/user-api/internal/core"
	"github.com/carterperez-dev/templates/user-api/internal/mail"
)

type memStore struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newMemStore(users ...*UserInfo) *memStore {
	s := &memStore{users: make(map[string]*UserInfo)}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (s *memStore) byID(id string) *UserInfo {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *memStore) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.byID(id)
	if u == nil {
		return fmt.Errorf("set reset token: %w", core.ErrNotFound)
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (s *memStore) ResetPassword(_ context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.byID(id)
	if u == nil || u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash ||
		u.ResetTokenExpiresAt == nil || u.ResetTokenExpiresAt.Before(now) {
		return fmt.Errorf("reset password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

func (s *memStore) get(email string) UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[email]
}

type countingHasher struct {
	verifyCalls int
}

func (h *countingHasher) Hash(p string) (string, error) {
	return "hashed:" + p, nil
}

func (h *countingHasher) Verify(p, encoded string) (bool, error) {
	h.verifyCalls++
	return encoded == "hashed:"+p, nil
}

type fakeMailer struct {
	sent      []mail.Message
	undeliver bool
	err       error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) (mail.Delivery, error) {
	if m.err != nil {
		return mail.Delivery{}, m.err
	}
	m.sent = append(m.sent, msg)
	return mail.Delivery{Delivered: !m.undeliver}, nil
}

func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	link := m.sent[len(m.sent)-1].Text
	return link[strings.LastIndex(link, "/")+1:]
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type fixture struct {
	svc    *Service
	store  *memStore
	hasher *countingHasher
	mailer *fakeMailer
	clock  *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemStore(&UserInfo{
		ID:           "u1",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "a@x.com",
		Phone:        "5550001",
		PasswordHash: "hashed:OldPassw0rd",
		Role:         "user",
		IsActive:     true,
	})
	hasher := &countingHasher{}
	mailer := &fakeMailer{}

	svc := NewService(
		store,
		newTestSigner(t, 0, clock.Now),
		mailer,
		WithClock(clock.Now),
		WithHasher(hasher),
	)

	return &fixture{svc: svc, store: store, hasher: hasher, mailer: mailer, clock: clock}
}

func (f *fixture) forgot(t *testing.T) string {
	t.Helper()
	require.NoError(t, f.svc.ForgotPassword(context.Background(), "a@x.com", "https://app.example.com"))
	return f.mailer.lastToken(t)
}

func TestLogin_UnknownEmailSkipsPasswordCheck(t *testing.T) {
	f := newFixture(t)

	for _, email := range []string{"nobody@x.com", "b@x.com", "A@Y.com"} {
		_, err := f.svc.Login(context.Background(), LoginRequest{Email: email, Password: "OldPassw0rd"})
		assert.ErrorIs(t, err, ErrInvalidEmail)
	}
	assert.Zero(t, f.hasher.verifyCalls)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.NotErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, 1, f.hasher.verifyCalls)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Login(context.Background(), LoginRequest{Email: " A@X.com ", Password: "OldPassw0rd"})
	require.NoError(t, err)

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, UserResponse{
		ID: "u1", FirstName: "Ada", LastName: "Lovelace",
		Email: "a@x.com", Phone: "5550001", Role: "user",
	}, resp.Data)

	claims, err := f.svc.signer.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestForgotPassword_SetsTokenAndExpiryTogether(t *testing.T) {
	f := newFixture(t)
	issuedAt := f.clock.now

	token := f.forgot(t)

	u := f.store.get("a@x.com")
	require.NotNil(t, u.ResetTokenHash)
	require.NotNil(t, u.ResetTokenExpiresAt)
	assert.Equal(t, core.HashToken(token), *u.ResetTokenHash)
	assert.Equal(t, issuedAt.Add(15*time.Minute), *u.ResetTokenExpiresAt)

	msg := f.mailer.sent[0]
	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, mail.SubjectResetPassword, msg.Subject)
	assert.Equal(t, "https://app.example.com/auth/password-reset/"+token, msg.Text)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ForgotPassword(context.Background(), "ghost@x.com", "http://localhost")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	assert.Empty(t, f.mailer.sent)
}

func TestForgotPassword_UndeliveredReportsNotFound(t *testing.T) {
	f := newFixture(t)
	f.mailer.undeliver = true

	err := f.svc.ForgotPassword(context.Background(), "a@x.com", "http://localhost")
	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func TestForgotPassword_MailerError(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp exploded")

	err := f.svc.ForgotPassword(context.Background(), "a@x.com", "http://localhost")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailNotFound)
}

func TestResetPassword_StaleTokenIsExpired(t *testing.T) {
	f := newFixture(t)

	t1 := f.forgot(t)
	t2 := f.forgot(t)
	require.NotEqual(t, t1, t2)

	result, err := f.svc.ResetPassword(context.Background(), t1, ResetPasswordRequest{
		Password: "Passw0rd!", ConfirmPassword: "Passw0rd!",
	})
	require.NoError(t, err)
	assert.True(t, result.Expired)
	assert.Equal(t, "hashed:OldPassw0rd", f.store.get("a@x.com").PasswordHash)
}

func TestResetPassword_AfterExpiry(t *testing.T) {
	f := newFixture(t)
	token := f.forgot(t)

	f.clock.now = f.clock.now.Add(15*time.Minute + time.Second)

	result, err := f.svc.ResetPassword(context.Background(), token, ResetPasswordRequest{
		Password: "Passw0rd!", ConfirmPassword: "Passw0rd!",
	})
	require.NoError(t, err)
	assert.True(t, result.Expired)
	assert.Equal(t, "hashed:OldPassw0rd", f.store.get("a@x.com").PasswordHash)
}

func TestResetPassword_AtExactExpiryStillValid(t *testing.T) {
	f := newFixture(t)
	token := f.forgot(t)

	f.clock.now = f.clock.now.Add(15 * time.Minute)

	result, err := f.svc.ResetPassword(context.Background(), token, ResetPasswordRequest{
		Password: "Passw0rd!", ConfirmPassword: "Passw0rd!",
	})
	require.NoError(t, err)
	assert.False(t, result.Expired)
}

func TestResetPassword_ConfirmationMismatch(t *testing.T) {
	f := newFixture(t)
	token := f.forgot(t)

	result, err := f.svc.ResetPassword(context.Background(), token, ResetPasswordRequest{
		Password: "Passw0rd!", ConfirmPassword: "Passw0rd?",
	})
	require.NoError(t, err)
	assert.True(t, result.Expired)

	u := f.store.get("a@x.com")
	assert.Equal(t, "hashed:OldPassw0rd", u.PasswordHash)
	assert.NotNil(t, u.ResetTokenHash)
}

func TestResetPassword_EmptyPasswordIsExpired(t *testing.T) {
	f := newFixture(t)
	token := f.forgot(t)

	result, err := f.svc.ResetPassword(context.Background(), token, ResetPasswordRequest{})
	require.NoError(t, err)
	assert.True(t, result.Expired)
	assert.Equal(t, "hashed:OldPassw0rd", f.store.get("a@x.com").PasswordHash)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.signer.Sign(Claims{Type: TokenTypeAccess, Email: "a@x.com", Role: "user"})
	require.NoError(t, err)
	orphan, err := f.svc.signer.Sign(Claims{Type: TokenTypeReset, UserID: "gone", Email: "gone@x.com"})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "abc.def.ghi",
		"session token": session,
		"unknown user":  orphan,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ResetPassword(context.Background(), token, ResetPasswordRequest{
				Password: "Passw0rd!", ConfirmPassword: "Passw0rd!",
			})
			assert.ErrorIs(t, err, ErrInvalidReset)
		})
	}
}

func TestResetPassword_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := ResetPasswordRequest{Password: "Passw0rd!", ConfirmPassword: "Passw0rd!"}

	before := f.store.get("a@x.com")
	require.Nil(t, before.ResetTokenHash)

	t1 := f.forgot(t)
	u := f.store.get("a@x.com")
	require.NotNil(t, u.ResetTokenExpiresAt)
	assert.Equal(t, f.clock.now.Add(15*time.Minute), *u.ResetTokenExpiresAt)

	f.clock.now = f.clock.now.Add(5 * time.Minute)

	result, err := f.svc.ResetPassword(ctx, t1, req)
	require.NoError(t, err)
	assert.False(t, result.Expired)

	u = f.store.get("a@x.com")
	assert.Equal(t, "hashed:Passw0rd!", u.PasswordHash)
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiresAt)

	result, err = f.svc.ResetPassword(ctx, t1, req)
	require.NoError(t, err)
	assert.True(t, result.Expired)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "Passw0rd!"})
	assert.NoError(t, err)
}

func TestVerifyAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "OldPassw0rd"})
	require.NoError(t, err)

	claims, err := f.svc.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "user", claims.Role)

	reset := f.forgot(t)
	_, err = f.svc.VerifyAccessToken(ctx, reset)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	ghost, err := f.svc.signer.Sign(Claims{Type: TokenTypeAccess, Email: "ghost@x.com", Role: "admin"})
	require.NoError(t, err)
	_, err = f.svc.VerifyAccessToken(ctx, ghost)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.GetCurrentUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = f.svc.GetCurrentUser(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResetLink(t *testing.T) {
	assert.Equal(t, "http://h/auth/password-reset/tok", ResetLink("http://h/", "tok"))
	assert.Equal(t, "http://h/auth/password-reset/tok", ResetLink("http://h", "tok"))
}

func TestWithResetTTL(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.store, f.svc.signer, f.mailer,
		WithClock(f.clock.Now), WithHasher(f.hasher), WithResetTTL(time.Hour))

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@x.com", "http://h"))
	u := f.store.get("a@x.com")
	assert.Equal(t, f.clock.now.Add(time.Hour), *u.ResetTokenExpiresAt)

	assert.Equal(t, DefaultResetTokenTTL, NewService(nil, nil, nil, WithResetTTL(0)).resetTTL)
}
