package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenManager
	denylist *Denylist
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager, denylist *Denylist) *Service {
	return &Service{repo: repo, tokens: tokens, denylist: denylist}
}

// Authenticate validates email/password credentials and issues a token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user, time.Now())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Resolve turns a bearer credential into a verified principal. The role
// comes from the persisted user row, never from the token claims, so a
// token issued before a role change cannot escalate privilege. Any failure
// collapses to ErrInvalidToken; the caller learns nothing about which
// check rejected the credential.
func (s *Service) Resolve(ctx context.Context, rawToken string) (authz.Principal, error) {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return authz.Principal{}, ErrInvalidToken
	}
	if s.denylist != nil && claims.TokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return authz.Principal{}, err
		}
		if revoked {
			return authz.Principal{}, ErrInvalidToken
		}
	}
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return authz.Principal{}, ErrInvalidToken
	}
	if !user.IsActive || !user.Role.Valid() {
		return authz.Principal{}, ErrInvalidToken
	}
	return authz.Principal{ID: user.ID, Role: user.Role}, nil
}

// Logout revokes the token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return ErrInvalidToken
	}
	if s.denylist == nil || claims.TokenID == "" {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}
