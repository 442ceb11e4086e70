package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// OwnershipRepo exposes the relationship lookups the scope rules need.
// Every lookup is issued fresh per request: relationships mutate, so
// ownership facts are never cached across requests.
type OwnershipRepo interface {
	// TeacherIDByUser resolves the teacher row belonging to a user account.
	// Returns shared.ErrNotFound when the user is not a teacher.
	TeacherIDByUser(ctx context.Context, userID int64) (int64, error)
	// TeacherTeachesClass reports whether the teacher has a schedule entry
	// for the class.
	TeacherTeachesClass(ctx context.Context, teacherID, classID int64) (bool, error)
	// StudentClassID resolves the class a student belongs to.
	StudentClassID(ctx context.Context, studentID int64) (int64, error)
	// StudentUserID resolves the user account behind a student row.
	StudentUserID(ctx context.Context, studentID int64) (int64, error)
	// LinkedStudentIDs lists the students linked to a parent account.
	LinkedStudentIDs(ctx context.Context, parentUserID int64) ([]int64, error)
	// StudentIDsByUser lists the student rows owned by a user account.
	StudentIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	// TaughtStudentIDs lists students in every class the teacher has a
	// schedule entry for.
	TaughtStudentIDs(ctx context.Context, teacherID int64) ([]int64, error)
}

// Fact is a computed ownership decision plus its justification. A fact is
// valid only for the exact principal+resource pair it was computed from.
type Fact struct {
	Allowed bool
	Reason  string
}

// Resolver decides whether a principal's role-specific relationship to a
// resource permits an operation. The whole ownership matrix lives here so
// it can be tested exhaustively instead of being re-derived per route.
type Resolver struct {
	repo OwnershipRepo
}

// NewResolver constructs a Resolver.
func NewResolver(repo OwnershipRepo) *Resolver {
	return &Resolver{repo: repo}
}

// InScope reports whether the resource falls within the principal's scope
// for the given action. Callers must check resource existence first so a
// missing row surfaces as not-found, never as a scope denial.
func (r *Resolver) InScope(ctx context.Context, p Principal, ref ResourceRef, action Action) (bool, error) {
	fact, err := r.Check(ctx, p, ref, action)
	if err != nil {
		return false, err
	}
	return fact.Allowed, nil
}

// Check computes the ownership fact for a principal+resource pair.
func (r *Resolver) Check(ctx context.Context, p Principal, ref ResourceRef, action Action) (Fact, error) {
	switch p.Role {
	case RoleAdmin:
		return Fact{Allowed: true, Reason: "admin"}, nil
	case RoleTeacher:
		return r.checkTeacher(ctx, p, ref, action)
	case RoleStudent:
		return r.checkStudent(ctx, p, ref)
	case RoleParent:
		return r.checkParent(ctx, p, ref)
	}
	return Fact{}, fmt.Errorf("authz: unknown role %q", p.Role)
}

func (r *Resolver) checkTeacher(ctx context.Context, p Principal, ref ResourceRef, action Action) (Fact, error) {
	teacherID, err := r.repo.TeacherIDByUser(ctx, p.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Fact{Reason: "no teacher record for user"}, nil
		}
		return Fact{}, err
	}

	// Modifying an existing grade requires being its recorded teacher.
	// Teaching the class is necessary but not sufficient here.
	if ref.Kind == KindGrade && action == ActionModify {
		if ref.TeacherID == teacherID {
			return Fact{Allowed: true, Reason: "grade's recorded teacher"}, nil
		}
		return Fact{Reason: "not the grade's recorded teacher"}, nil
	}

	classID := ref.ID
	if ref.Kind != KindClass {
		classID, err = r.repo.StudentClassID(ctx, ref.StudentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Fact{Reason: "student has no class"}, nil
			}
			return Fact{}, err
		}
	}
	teaches, err := r.repo.TeacherTeachesClass(ctx, teacherID, classID)
	if err != nil {
		return Fact{}, err
	}
	if teaches {
		return Fact{Allowed: true, Reason: "teacher has schedule entry for class"}, nil
	}
	return Fact{Reason: "teacher does not teach class"}, nil
}

func (r *Resolver) checkStudent(ctx context.Context, p Principal, ref ResourceRef) (Fact, error) {
	if ref.Kind == KindClass {
		return Fact{Reason: "class records are not student-owned"}, nil
	}
	userID, err := r.repo.StudentUserID(ctx, ref.StudentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Fact{Reason: "student record missing"}, nil
		}
		return Fact{}, err
	}
	if userID == p.ID {
		return Fact{Allowed: true, Reason: "own record"}, nil
	}
	return Fact{Reason: "record belongs to another student"}, nil
}

func (r *Resolver) checkParent(ctx context.Context, p Principal, ref ResourceRef) (Fact, error) {
	if ref.Kind == KindClass {
		return Fact{Reason: "class records are not parent-owned"}, nil
	}
	linked, err := r.repo.LinkedStudentIDs(ctx, p.ID)
	if err != nil {
		return Fact{}, err
	}
	for _, id := range linked {
		if id == ref.StudentID {
			return Fact{Allowed: true, Reason: "linked student"}, nil
		}
	}
	return Fact{Reason: "student not linked to parent"}, nil
}

// FilterStudentIDs narrows a candidate set to the student ids the principal
// may see. Candidate order is preserved. An empty accessible set yields an
// empty result, never an error.
func (r *Resolver) FilterStudentIDs(ctx context.Context, p Principal, candidates []int64) ([]int64, error) {
	if p.Role == RoleAdmin {
		return candidates, nil
	}
	allowed, unscoped, err := r.AccessibleStudentIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	if unscoped {
		return candidates, nil
	}
	return intersect(candidates, allowed), nil
}

// AccessibleStudentIDs resolves the student id set the principal's role can
// reach. unscoped is true for ADMIN, whose reach is unrestricted.
func (r *Resolver) AccessibleStudentIDs(ctx context.Context, p Principal) (ids []int64, unscoped bool, err error) {
	switch p.Role {
	case RoleAdmin:
		return nil, true, nil
	case RoleTeacher:
		teacherID, err := r.repo.TeacherIDByUser(ctx, p.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return []int64{}, false, nil
			}
			return nil, false, err
		}
		ids, err := r.repo.TaughtStudentIDs(ctx, teacherID)
		return ids, false, err
	case RoleStudent:
		ids, err := r.repo.StudentIDsByUser(ctx, p.ID)
		return ids, false, err
	case RoleParent:
		ids, err := r.repo.LinkedStudentIDs(ctx, p.ID)
		return ids, false, err
	}
	return nil, false, fmt.Errorf("authz: unknown role %q", p.Role)
}

func intersect(candidates, allowed []int64) []int64 {
	set := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	result := make([]int64, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := set[id]; ok {
			result = append(result, id)
		}
	}
	return result
}
