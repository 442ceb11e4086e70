package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Fixture: user 10 is teacher 1 teaching class 100; student 500 (user 20)
// sits in class 100, student 501 in class 200; parent 30 is linked to 500.
type stubOwnership struct{}

func (stubOwnership) TeacherIDByUser(ctx context.Context, userID int64) (int64, error) {
	if userID == 10 {
		return 1, nil
	}
	return 0, shared.ErrNotFound
}

func (stubOwnership) TeacherTeachesClass(ctx context.Context, teacherID, classID int64) (bool, error) {
	return teacherID == 1 && classID == 100, nil
}

func (stubOwnership) StudentClassID(ctx context.Context, studentID int64) (int64, error) {
	switch studentID {
	case 500:
		return 100, nil
	case 501:
		return 200, nil
	}
	return 0, shared.ErrNotFound
}

func (stubOwnership) StudentUserID(ctx context.Context, studentID int64) (int64, error) {
	if studentID == 500 {
		return 20, nil
	}
	return 0, shared.ErrNotFound
}

func (stubOwnership) LinkedStudentIDs(ctx context.Context, parentUserID int64) ([]int64, error) {
	if parentUserID == 30 {
		return []int64{500}, nil
	}
	return nil, nil
}

func (stubOwnership) StudentIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	if userID == 20 {
		return []int64{500}, nil
	}
	return nil, nil
}

func (stubOwnership) TaughtStudentIDs(ctx context.Context, teacherID int64) ([]int64, error) {
	if teacherID == 1 {
		return []int64{500}, nil
	}
	return nil, nil
}

type stubRepo struct {
	records    map[int64]Record
	students   map[int64]bool
	lastFilter ListFilter
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	s.lastFilter = filter
	return nil, 0, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return rec, nil
}

func (s *stubRepo) Create(ctx context.Context, record Record) (Record, error) {
	record.ID = 999
	s.records[record.ID] = record
	return record, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, record Record) error {
	if _, ok := s.records[id]; !ok {
		return shared.ErrNotFound
	}
	s.records[id] = record
	return nil
}

func (s *stubRepo) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	return s.students[studentID], nil
}

func fixture() (*Service, *stubRepo) {
	repo := &stubRepo{
		records: map[int64]Record{
			700: {ID: 700, StudentID: 500, ClassID: 100, Status: StatusAbsent, AttendedAt: time.Now()},
		},
		students: map[int64]bool{500: true, 501: true},
	}
	return NewService(repo, authz.NewResolver(stubOwnership{})), repo
}

var (
	teacher = authz.Principal{ID: 10, Role: authz.RoleTeacher}
	student = authz.Principal{ID: 20, Role: authz.RoleStudent}
	parent  = authz.Principal{ID: 30, Role: authz.RoleParent}
)

func mark(studentID int64, status string) Record {
	return Record{StudentID: studentID, ClassID: 100, Status: status, AttendedAt: time.Now()}
}

func TestCreateTeacherInClass(t *testing.T) {
	svc, _ := fixture()

	if _, err := svc.Create(context.Background(), teacher, mark(500, StatusPresent)); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestCreateTeacherOutsideClassForbidden(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Create(context.Background(), teacher, mark(501, StatusPresent))
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateUnknownStudentIsNotFound(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Create(context.Background(), teacher, mark(999, StatusPresent))
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsBadStatus(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Create(context.Background(), teacher, mark(500, "tardy"))
	if !errors.Is(err, httpx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStudentCannotMark(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.Create(context.Background(), student, mark(500, StatusPresent))
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetParentLinkedStudent(t *testing.T) {
	svc, _ := fixture()

	rec, err := svc.Get(context.Background(), parent, 700)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.StudentID != 500 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestListScopedForParent(t *testing.T) {
	svc, repo := fixture()

	if _, _, err := svc.List(context.Background(), parent, ListFilter{Page: 1, PageSize: 20}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(repo.lastFilter.IDs) != 1 || repo.lastFilter.IDs[0] != 500 {
		t.Fatalf("expected restriction to [500], got %v", repo.lastFilter.IDs)
	}
}

func TestUpdateFollowsClassRule(t *testing.T) {
	svc, _ := fixture()

	if err := svc.Update(context.Background(), teacher, 700, Record{Status: StatusSick}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Update(context.Background(), teacher, 999, Record{Status: StatusSick}); !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
