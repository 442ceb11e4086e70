package students

import (
	"context"
	"errors"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// ScopeResolver is the slice of the authorization core this module needs.
type ScopeResolver interface {
	InScope(ctx context.Context, p authz.Principal, ref authz.ResourceRef, action authz.Action) (bool, error)
	AccessibleStudentIDs(ctx context.Context, p authz.Principal) (ids []int64, unscoped bool, err error)
}

// Service applies scoping and validation on top of the repository.
type Service struct {
	repo  Repository
	scope ScopeResolver
}

// NewService constructs a Service.
func NewService(repo Repository, scope ScopeResolver) *Service {
	return &Service{repo: repo, scope: scope}
}

// List returns the students visible to the principal.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Student, int, error) {
	ids, unscoped, err := s.scope.AccessibleStudentIDs(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	if !unscoped {
		if ids == nil {
			ids = []int64{}
		}
		filter.IDs = ids
	}
	return s.repo.List(ctx, filter)
}

// Get fetches one student. Existence is checked before scope so a missing
// id is a plain not-found for everyone.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (Student, error) {
	student, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Student{}, httpx.ErrNotFound
		}
		return Student{}, err
	}
	ok, err := s.scope.InScope(ctx, p, authz.StudentRef(student.ID), authz.ActionView)
	if err != nil {
		return Student{}, err
	}
	if !ok {
		return Student{}, httpx.ErrForbidden
	}
	return student, nil
}

// Create registers a new student. Admin only; the router gates the role,
// the service validates the payload.
func (s *Service) Create(ctx context.Context, p authz.Principal, student Student) (Student, error) {
	if !authz.Allowed(p, authz.RoleAdmin) {
		return Student{}, httpx.ErrForbidden
	}
	if student.FullName == "" || student.NIS == "" || student.ClassID <= 0 {
		return Student{}, httpx.ErrValidation
	}
	return s.repo.Create(ctx, student)
}

// Update rewrites a student record. Admin only.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, student Student) error {
	if !authz.Allowed(p, authz.RoleAdmin) {
		return httpx.ErrForbidden
	}
	if id <= 0 || student.FullName == "" || student.ClassID <= 0 {
		return httpx.ErrValidation
	}
	err := s.repo.Update(ctx, id, student)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}

// Delete removes a student record. Admin only.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if !authz.Allowed(p, authz.RoleAdmin) {
		return httpx.ErrForbidden
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
