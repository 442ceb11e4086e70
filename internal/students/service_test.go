package students

import (
	"context"
	"errors"
	"testing"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

type stubRepo struct {
	students   map[int64]Student
	lastFilter ListFilter
	listCalled bool
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter) ([]Student, int, error) {
	s.lastFilter = filter
	s.listCalled = true
	list := make([]Student, 0)
	for _, st := range s.students {
		list = append(list, st)
	}
	return list, len(list), nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Student, error) {
	st, ok := s.students[id]
	if !ok {
		return Student{}, shared.ErrNotFound
	}
	return st, nil
}

func (s *stubRepo) Create(ctx context.Context, student Student) (Student, error) {
	student.ID = int64(len(s.students) + 1)
	s.students[student.ID] = student
	return student, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, student Student) error {
	if _, ok := s.students[id]; !ok {
		return shared.ErrNotFound
	}
	student.ID = id
	s.students[id] = student
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.students[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.students, id)
	return nil
}

type stubScope struct {
	ids      []int64
	unscoped bool
	inScope  bool
}

func (s *stubScope) InScope(ctx context.Context, p authz.Principal, ref authz.ResourceRef, action authz.Action) (bool, error) {
	return s.inScope, nil
}

func (s *stubScope) AccessibleStudentIDs(ctx context.Context, p authz.Principal) ([]int64, bool, error) {
	return s.ids, s.unscoped, nil
}

func fixtureRepo() *stubRepo {
	return &stubRepo{students: map[int64]Student{
		500: {ID: 500, ClassID: 100, NIS: "2024001", FullName: "Budi Santoso"},
		501: {ID: 501, ClassID: 200, NIS: "2024002", FullName: "Siti Rahma"},
	}}
}

func TestListUnscopedLeavesFilterOpen(t *testing.T) {
	repo := fixtureRepo()
	svc := NewService(repo, &stubScope{unscoped: true})

	_, _, err := svc.List(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin}, ListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastFilter.IDs != nil {
		t.Fatalf("expected no id restriction for admin, got %v", repo.lastFilter.IDs)
	}
}

func TestListScopedRestrictsToAccessibleIDs(t *testing.T) {
	repo := fixtureRepo()
	svc := NewService(repo, &stubScope{ids: []int64{500}})

	_, _, err := svc.List(context.Background(), authz.Principal{ID: 30, Role: authz.RoleParent}, ListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(repo.lastFilter.IDs) != 1 || repo.lastFilter.IDs[0] != 500 {
		t.Fatalf("expected filter restricted to [500], got %v", repo.lastFilter.IDs)
	}
}

func TestListScopedEmptySetStillQueries(t *testing.T) {
	// A parent with no linked students must get an empty page, not an
	// unrestricted one.
	repo := fixtureRepo()
	svc := NewService(repo, &stubScope{ids: nil})

	_, _, err := svc.List(context.Background(), authz.Principal{ID: 31, Role: authz.RoleParent}, ListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastFilter.IDs == nil || len(repo.lastFilter.IDs) != 0 {
		t.Fatalf("expected empty id restriction, got %v", repo.lastFilter.IDs)
	}
}

func TestGetMissingIsNotFoundBeforeScope(t *testing.T) {
	svc := NewService(fixtureRepo(), &stubScope{inScope: false})

	_, err := svc.Get(context.Background(), authz.Principal{ID: 20, Role: authz.RoleStudent}, 999)
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found for missing id, got %v", err)
	}
}

func TestGetOutOfScopeIsForbidden(t *testing.T) {
	svc := NewService(fixtureRepo(), &stubScope{inScope: false})

	_, err := svc.Get(context.Background(), authz.Principal{ID: 20, Role: authz.RoleStudent}, 501)
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetInScope(t *testing.T) {
	svc := NewService(fixtureRepo(), &stubScope{inScope: true})

	student, err := svc.Get(context.Background(), authz.Principal{ID: 20, Role: authz.RoleStudent}, 500)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if student.NIS != "2024001" {
		t.Fatalf("unexpected student %+v", student)
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := NewService(fixtureRepo(), &stubScope{})

	_, err := svc.Create(context.Background(), authz.Principal{ID: 10, Role: authz.RoleTeacher}, Student{
		NIS: "2024003", FullName: "Andi Wijaya", ClassID: 100,
	})
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("expected forbidden for teacher, got %v", err)
	}
}

func TestCreateValidatesPayload(t *testing.T) {
	svc := NewService(fixtureRepo(), &stubScope{})

	_, err := svc.Create(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin}, Student{NIS: "2024003"})
	if !errors.Is(err, httpx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	svc := NewService(fixtureRepo(), &stubScope{})

	err := svc.Update(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin}, 999, Student{
		FullName: "Andi Wijaya", ClassID: 100,
	})
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
