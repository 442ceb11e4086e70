package grades

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

// TeacherDirectory resolves the teacher row behind a user account.
type TeacherDirectory interface {
	TeacherIDByUser(ctx context.Context, userID int64) (int64, error)
}

// Service enforces the grade ownership rules. Creating a grade requires
// teaching the student's class; changing an existing grade requires being
// the teacher who recorded it. Teaching the class is not enough to modify.
type Service struct {
	repo     Repository
	scope    ScopeResolver
	teachers TeacherDirectory
}

// NewService constructs a Service.
func NewService(repo Repository, scope ScopeResolver, teachers TeacherDirectory) *Service {
	return &Service{repo: repo, scope: scope, teachers: teachers}
}

// List returns the grades visible to the principal.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Grade, int, error) {
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

// Get fetches one grade, checking existence before scope.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (Grade, error) {
	grade, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Grade{}, httpx.ErrNotFound
		}
		return Grade{}, err
	}
	ok, err := s.scope.InScope(ctx, p, authz.GradeRef(grade.ID, grade.StudentID, grade.TeacherID), authz.ActionView)
	if err != nil {
		return Grade{}, err
	}
	if !ok {
		return Grade{}, httpx.ErrForbidden
	}
	return grade, nil
}

// Create records a new grade. A teacher must have a schedule entry for
// the student's class; the recorded teacher is always the caller's own
// teacher row. An admin supplies the teacher explicitly.
func (s *Service) Create(ctx context.Context, p authz.Principal, grade Grade) (Grade, error) {
	if !authz.Allowed(p, authz.RoleAdmin, authz.RoleTeacher) {
		return Grade{}, httpx.ErrForbidden
	}
	if grade.StudentID <= 0 || grade.SubjectID <= 0 || grade.Score < 0 || grade.Score > 100 {
		return Grade{}, httpx.ErrValidation
	}

	exists, err := s.repo.StudentExists(ctx, grade.StudentID)
	if err != nil {
		return Grade{}, err
	}
	if !exists {
		return Grade{}, httpx.ErrNotFound
	}

	if p.Role == authz.RoleTeacher {
		ok, err := s.scope.InScope(ctx, p, authz.GradeRef(0, grade.StudentID, 0), authz.ActionCreate)
		if err != nil {
			return Grade{}, err
		}
		if !ok {
			return Grade{}, httpx.ErrForbidden
		}
		teacherID, err := s.teachers.TeacherIDByUser(ctx, p.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Grade{}, httpx.ErrForbidden
			}
			return Grade{}, err
		}
		grade.TeacherID = teacherID
	} else if grade.TeacherID <= 0 {
		return Grade{}, httpx.ErrValidation
	}

	return s.repo.Create(ctx, grade)
}

// Update changes an existing grade after the recorded-teacher check.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, grade Grade) error {
	if grade.Score < 0 || grade.Score > 100 {
		return httpx.ErrValidation
	}
	if _, err := s.modifiable(ctx, p, id); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, grade)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}

// Delete removes an existing grade after the recorded-teacher check.
func (s *Service) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if _, err := s.modifiable(ctx, p, id); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}

func (s *Service) modifiable(ctx context.Context, p authz.Principal, id int64) (Grade, error) {
	if !authz.Allowed(p, authz.RoleAdmin, authz.RoleTeacher) {
		return Grade{}, httpx.ErrForbidden
	}
	grade, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Grade{}, httpx.ErrNotFound
		}
		return Grade{}, err
	}
	ok, err := s.scope.InScope(ctx, p, authz.GradeRef(grade.ID, grade.StudentID, grade.TeacherID), authz.ActionModify)
	if err != nil {
		return Grade{}, err
	}
	if !ok {
		return Grade{}, httpx.ErrForbidden
	}
	return grade, nil
}
