// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/user-api/internal/auth"
	"github.com/carterperez-dev/templates/user-api/internal/core"
)

var (
	ErrEmailExists = errors.New("email already in use")
	ErrPhoneExists = errors.New("phone already in use")

	errDeleteAdmin = fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
)

type Hasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher Hasher
}

func NewService(repo Repository, hasher Hasher) *Service {
	if hasher == nil {
		hasher = core.Argon2Hasher{}
	}
	return &Service{repo: repo, hasher: hasher}
}

// Register creates a standard account. The role is always RoleUser no
// matter what the caller sent.
func (s *Service) Register(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	return s.create(ctx, req, RoleUser)
}

// CreateAdmin is the only path that produces an elevated account and is
// reachable from the admin-init command, never from HTTP.
func (s *Service) CreateAdmin(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	return s.create(ctx, req, RoleAdmin)
}

func (s *Service) create(
	ctx context.Context,
	req CreateUserRequest,
	role string,
) (*User, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	exists, err = s.repo.ExistsByPhone(ctx, req.Phone, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser hides deactivated accounts from everyone but admins, who need
// to see them to reactivate.
func (s *Service) GetUser(
	ctx context.Context,
	id, requesterRole string,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsActive && requesterRole != RoleAdmin {
		return nil, fmt.Errorf("get user %s: inactive: %w", id, core.ErrNotFound)
	}

	return user, nil
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id, requesterRole string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.GetUser(ctx, id, requesterRole)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil && *req.Phone != user.Phone {
		exists, err := s.repo.ExistsByPhone(ctx, *req.Phone, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPhoneExists
		}
		user.Phone = *req.Phone
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrPhoneExists
		}
		return nil, err
	}

	return user, nil
}

// DeleteUser soft deletes targetID. Admin accounts cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, targetID string) error {
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return errDeleteAdmin
	}

	return s.repo.SoftDelete(ctx, targetID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()
	return s.repo.List(ctx, params)
}

// CanModify allows a request on targetID when the requester owns the
// account or holds the admin role.
func (s *Service) CanModify(requesterID, requesterRole, targetID string) error {
	if requesterID == "" {
		return fmt.Errorf("modify user: %w", core.ErrUnauthorized)
	}
	if requesterID == targetID || requesterRole == RoleAdmin {
		return nil
	}
	return fmt.Errorf("modify user: %w", core.ErrForbidden)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetResetToken(ctx, id, tokenHash, expiresAt)
}

func (s *Service) ResetPassword(
	ctx context.Context,
	id, tokenHash, passwordHash string,
	now time.Time,
) error {
	return s.repo.ResetPassword(ctx, id, tokenHash, passwordHash, now)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                  u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Email:               u.Email,
		Phone:               u.Phone,
		PasswordHash:        u.PasswordHash,
		Role:                u.Role,
		IsActive:            u.IsActive,
		ResetTokenHash:      u.ResetTokenHash,
		ResetTokenExpiresAt: u.ResetTokenExpiresAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ auth.UserStore = (*Service)(nil)
