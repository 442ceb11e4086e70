package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Service handles account administration. Route-level gating already
// restricts the whole surface to admins.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	account, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Account{}, httpx.ErrNotFound
	}
	return account, err
}

// Create provisions a new account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, email, password string, role authz.Role) (Account, error) {
	if email == "" || len(password) < 8 || !role.Valid() {
		return Account{}, httpx.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, Account{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
}

// SetActive enables or disables an account. Disabling kills token
// resolution on the next request even for tokens already issued.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	err := s.repo.SetActive(ctx, id, active)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}

// UpdateRole reassigns an account's role. Issued tokens pick up the new
// role on their next request because resolution reads the row, not the
// token claims.
func (s *Service) UpdateRole(ctx context.Context, id int64, role authz.Role) error {
	if !role.Valid() {
		return httpx.ErrValidation
	}
	err := s.repo.UpdateRole(ctx, id, role)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
