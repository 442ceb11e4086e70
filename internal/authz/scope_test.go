package authz

import (
	"context"
	"testing"

	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

type stubOwnershipRepo struct {
	teacherByUser   map[int64]int64
	teaching        map[[2]int64]bool
	studentClass    map[int64]int64
	studentUser     map[int64]int64
	parentLinks     map[int64][]int64
	studentsByUser  map[int64][]int64
	taughtStudents  map[int64][]int64
	calls           int
}

func (s *stubOwnershipRepo) TeacherIDByUser(ctx context.Context, userID int64) (int64, error) {
	s.calls++
	id, ok := s.teacherByUser[userID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (s *stubOwnershipRepo) TeacherTeachesClass(ctx context.Context, teacherID, classID int64) (bool, error) {
	s.calls++
	return s.teaching[[2]int64{teacherID, classID}], nil
}

func (s *stubOwnershipRepo) StudentClassID(ctx context.Context, studentID int64) (int64, error) {
	s.calls++
	id, ok := s.studentClass[studentID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (s *stubOwnershipRepo) StudentUserID(ctx context.Context, studentID int64) (int64, error) {
	s.calls++
	id, ok := s.studentUser[studentID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (s *stubOwnershipRepo) LinkedStudentIDs(ctx context.Context, parentUserID int64) ([]int64, error) {
	s.calls++
	return s.parentLinks[parentUserID], nil
}

func (s *stubOwnershipRepo) StudentIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	s.calls++
	return s.studentsByUser[userID], nil
}

func (s *stubOwnershipRepo) TaughtStudentIDs(ctx context.Context, teacherID int64) ([]int64, error) {
	s.calls++
	return s.taughtStudents[teacherID], nil
}

func newTestResolver() (*Resolver, *stubOwnershipRepo) {
	repo := &stubOwnershipRepo{
		// user 10 is teacher 1 and teaches class 100; user 11 is teacher 2.
		teacherByUser: map[int64]int64{10: 1, 11: 2},
		teaching:      map[[2]int64]bool{{1, 100}: true, {2, 200}: true},
		// student 500 (user 20) is in class 100; student 501 in class 200.
		studentClass: map[int64]int64{500: 100, 501: 200},
		studentUser:  map[int64]int64{500: 20, 501: 21},
		parentLinks:  map[int64][]int64{30: {500}},
		studentsByUser: map[int64][]int64{
			20: {500},
			21: {501},
		},
		taughtStudents: map[int64][]int64{1: {500}, 2: {501}},
	}
	return NewResolver(repo), repo
}

func TestAdminAlwaysInScope(t *testing.T) {
	resolver, _ := newTestResolver()
	admin := Principal{ID: 1, Role: RoleAdmin}
	refs := []ResourceRef{
		StudentRef(500),
		ClassRef(999),
		GradeRef(7, 501, 2),
		AttendanceRef(3, 500),
		PaymentRef(4, 501),
	}
	for _, ref := range refs {
		for _, action := range []Action{ActionView, ActionCreate, ActionModify} {
			ok, err := resolver.InScope(context.Background(), admin, ref, action)
			if err != nil {
				t.Fatalf("inScope: %v", err)
			}
			if !ok {
				t.Fatalf("expected admin in scope for %s", ref.Kind)
			}
		}
	}
}

func TestTeacherGradeCreateRequiresClassSchedule(t *testing.T) {
	resolver, _ := newTestResolver()
	teacher := Principal{ID: 10, Role: RoleTeacher}

	// Student 500 belongs to class 100, which teacher 1 teaches.
	ok, err := resolver.InScope(context.Background(), teacher, GradeRef(0, 500, 0), ActionCreate)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if !ok {
		t.Fatalf("expected create allowed for taught class")
	}

	// Student 501 belongs to class 200, which teacher 1 does not teach.
	ok, err = resolver.InScope(context.Background(), teacher, GradeRef(0, 501, 0), ActionCreate)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if ok {
		t.Fatalf("expected create denied for untaught class")
	}
}

func TestTeacherGradeModifyRequiresRecordedTeacher(t *testing.T) {
	resolver, _ := newTestResolver()
	teacher := Principal{ID: 10, Role: RoleTeacher}

	// Grade recorded by teacher 2 on a student teacher 1 teaches: teaching
	// the class is not sufficient for modification.
	ok, err := resolver.InScope(context.Background(), teacher, GradeRef(7, 500, 2), ActionModify)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if ok {
		t.Fatalf("expected modify denied when not the recorded teacher")
	}

	ok, err = resolver.InScope(context.Background(), teacher, GradeRef(7, 500, 1), ActionModify)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if !ok {
		t.Fatalf("expected modify allowed for recorded teacher")
	}

	// Viewing that same grade stays a class-schedule question.
	ok, err = resolver.InScope(context.Background(), teacher, GradeRef(7, 500, 2), ActionView)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if !ok {
		t.Fatalf("expected view allowed for taught class")
	}
}

func TestStudentSeesOnlyOwnRecords(t *testing.T) {
	resolver, _ := newTestResolver()
	student := Principal{ID: 20, Role: RoleStudent}

	ok, err := resolver.InScope(context.Background(), student, PaymentRef(1, 500), ActionView)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if !ok {
		t.Fatalf("expected own payment in scope")
	}

	ok, err = resolver.InScope(context.Background(), student, PaymentRef(2, 501), ActionView)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if ok {
		t.Fatalf("expected other student's payment out of scope")
	}
}

func TestParentScopeFollowsLinkedStudents(t *testing.T) {
	resolver, _ := newTestResolver()
	parent := Principal{ID: 30, Role: RoleParent}

	ok, err := resolver.InScope(context.Background(), parent, AttendanceRef(1, 500), ActionView)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if !ok {
		t.Fatalf("expected linked student's attendance in scope")
	}

	ok, err = resolver.InScope(context.Background(), parent, AttendanceRef(2, 501), ActionView)
	if err != nil {
		t.Fatalf("inScope: %v", err)
	}
	if ok {
		t.Fatalf("expected unlinked student's attendance out of scope")
	}
}

func TestFilterStudentIDsParentIntersection(t *testing.T) {
	resolver, _ := newTestResolver()
	parent := Principal{ID: 30, Role: RoleParent}

	got, err := resolver.FilterStudentIDs(context.Background(), parent, []int64{501, 500, 502})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0] != 500 {
		t.Fatalf("expected [500], got %v", got)
	}

	// A parent with no links gets an empty result, never an error.
	lonely := Principal{ID: 31, Role: RoleParent}
	got, err = resolver.FilterStudentIDs(context.Background(), lonely, []int64{500, 501})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestFilterStudentIDsAdminPassThrough(t *testing.T) {
	resolver, repo := newTestResolver()
	admin := Principal{ID: 1, Role: RoleAdmin}

	candidates := []int64{500, 501, 502}
	got, err := resolver.FilterStudentIDs(context.Background(), admin, candidates)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected pass-through, got %v", got)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no ownership queries for admin, got %d", repo.calls)
	}
}

func TestAccessibleStudentIDsByRole(t *testing.T) {
	resolver, _ := newTestResolver()

	_, unscoped, err := resolver.AccessibleStudentIDs(context.Background(), Principal{ID: 1, Role: RoleAdmin})
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if !unscoped {
		t.Fatalf("expected admin unscoped")
	}

	ids, unscoped, err := resolver.AccessibleStudentIDs(context.Background(), Principal{ID: 10, Role: RoleTeacher})
	if err != nil {
		t.Fatalf("teacher: %v", err)
	}
	if unscoped || len(ids) != 1 || ids[0] != 500 {
		t.Fatalf("expected teacher scoped to [500], got %v (unscoped=%v)", ids, unscoped)
	}

	ids, _, err = resolver.AccessibleStudentIDs(context.Background(), Principal{ID: 20, Role: RoleStudent})
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	if len(ids) != 1 || ids[0] != 500 {
		t.Fatalf("expected student scoped to [500], got %v", ids)
	}
}
