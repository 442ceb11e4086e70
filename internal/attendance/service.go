package attendance

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

// Service enforces attendance rules. Marking attendance requires teaching
// the student's class (or admin); reading follows the usual scope set.
type Service struct {
	repo  Repository
	scope ScopeResolver
}

// NewService constructs a Service.
func NewService(repo Repository, scope ScopeResolver) *Service {
	return &Service{repo: repo, scope: scope}
}

// List returns the attendance records visible to the principal.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Record, int, error) {
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

// Get fetches one record, checking existence before scope.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (Record, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Record{}, httpx.ErrNotFound
		}
		return Record{}, err
	}
	ok, err := s.scope.InScope(ctx, p, authz.AttendanceRef(record.ID, record.StudentID), authz.ActionView)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, httpx.ErrForbidden
	}
	return record, nil
}

// Create marks attendance for a student.
func (s *Service) Create(ctx context.Context, p authz.Principal, record Record) (Record, error) {
	if !authz.Allowed(p, authz.RoleAdmin, authz.RoleTeacher) {
		return Record{}, httpx.ErrForbidden
	}
	if record.StudentID <= 0 || record.AttendedAt.IsZero() || !ValidStatus(record.Status) {
		return Record{}, httpx.ErrValidation
	}

	exists, err := s.repo.StudentExists(ctx, record.StudentID)
	if err != nil {
		return Record{}, err
	}
	if !exists {
		return Record{}, httpx.ErrNotFound
	}

	ok, err := s.scope.InScope(ctx, p, authz.AttendanceRef(0, record.StudentID), authz.ActionCreate)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, httpx.ErrForbidden
	}
	return s.repo.Create(ctx, record)
}

// Update corrects the status or notes of an existing record. The class
// rule applies; attendance carries no recorded-teacher restriction.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, record Record) error {
	if !authz.Allowed(p, authz.RoleAdmin, authz.RoleTeacher) {
		return httpx.ErrForbidden
	}
	if !ValidStatus(record.Status) {
		return httpx.ErrValidation
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	ok, err := s.scope.InScope(ctx, p, authz.AttendanceRef(existing.ID, existing.StudentID), authz.ActionModify)
	if err != nil {
		return err
	}
	if !ok {
		return httpx.ErrForbidden
	}
	err = s.repo.Update(ctx, id, record)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
