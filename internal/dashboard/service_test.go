package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
)

type stubRepo struct {
	students        int64
	teachers        int64
	classes         int64
	payments        int64
	attendance      int64
	present         int64
	absent          int64
	overdue         int64
	average         float64
	lowGrades       int64
	overdueErr      error
	lastStudentIDs  []int64
	sawScope        bool
	lastThreshold   float64
	lastWindowFrom  time.Time
	lastWindowTo    time.Time
}

func (s *stubRepo) record(ids []int64) {
	s.lastStudentIDs = ids
	s.sawScope = true
}

func (s *stubRepo) CountStudents(ctx context.Context, ids []int64) (int64, error) {
	s.record(ids)
	return s.students, nil
}

func (s *stubRepo) CountTeachers(ctx context.Context) (int64, error) { return s.teachers, nil }

func (s *stubRepo) CountClasses(ctx context.Context) (int64, error) { return s.classes, nil }

func (s *stubRepo) CountPayments(ctx context.Context, ids []int64) (int64, error) {
	return s.payments, nil
}

func (s *stubRepo) CountAttendance(ctx context.Context, from, to time.Time, ids []int64) (int64, error) {
	s.lastWindowFrom, s.lastWindowTo = from, to
	return s.attendance, nil
}

func (s *stubRepo) CountAttendancePresent(ctx context.Context, from, to time.Time, ids []int64) (int64, error) {
	return s.present, nil
}

func (s *stubRepo) CountAttendanceAbsent(ctx context.Context, from, to time.Time, ids []int64) (int64, error) {
	return s.absent, nil
}

func (s *stubRepo) CountOverduePayments(ctx context.Context, before time.Time, ids []int64) (int64, error) {
	if s.overdueErr != nil {
		return 0, s.overdueErr
	}
	return s.overdue, nil
}

func (s *stubRepo) AverageGrade(ctx context.Context, ids []int64) (float64, error) {
	return s.average, nil
}

func (s *stubRepo) CountLowGrades(ctx context.Context, threshold float64, ids []int64) (int64, error) {
	s.lastThreshold = threshold
	return s.lowGrades, nil
}

type stubScope struct {
	ids      map[int64][]int64
	unscoped bool
	calls    int
}

func (s *stubScope) AccessibleStudentIDs(ctx context.Context, p authz.Principal) ([]int64, bool, error) {
	s.calls++
	return s.ids[p.ID], s.unscoped, nil
}

func TestSnapshotAttendanceRate(t *testing.T) {
	repo := &stubRepo{attendance: 10, present: 7}
	svc := NewService(repo, &stubScope{}, 0)

	snapshot, err := svc.Snapshot(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.AttendanceRateToday != 70.00 {
		t.Fatalf("expected rate 70.00, got %.2f", snapshot.AttendanceRateToday)
	}
}

func TestSnapshotZeroAttendanceRate(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubScope{}, 0)

	snapshot, err := svc.Snapshot(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.AttendanceRateToday != 0 {
		t.Fatalf("expected rate 0 for empty window, got %.2f", snapshot.AttendanceRateToday)
	}
}

func TestSnapshotAverageGradeRounded(t *testing.T) {
	repo := &stubRepo{average: 81.2345}
	svc := NewService(repo, &stubScope{}, 0)

	snapshot, err := svc.Snapshot(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.AverageGrade != 81.23 {
		t.Fatalf("expected average 81.23, got %v", snapshot.AverageGrade)
	}
}

func TestSnapshotScopesStudentAndParent(t *testing.T) {
	repo := &stubRepo{}
	scope := &stubScope{ids: map[int64][]int64{20: {500}}}
	svc := NewService(repo, scope, 0)

	_, err := svc.Snapshot(context.Background(), authz.Principal{ID: 20, Role: authz.RoleStudent})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(repo.lastStudentIDs) != 1 || repo.lastStudentIDs[0] != 500 {
		t.Fatalf("expected counts scoped to [500], got %v", repo.lastStudentIDs)
	}

	// A parent with no linked students still gets a snapshot, with an
	// empty scope that matches nothing.
	repo.sawScope = false
	_, err = svc.Snapshot(context.Background(), authz.Principal{ID: 31, Role: authz.RoleParent})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if repo.lastStudentIDs == nil || len(repo.lastStudentIDs) != 0 {
		t.Fatalf("expected empty scope set, got %v", repo.lastStudentIDs)
	}
}

func TestSnapshotTeacherGetsGlobalView(t *testing.T) {
	// Teachers deliberately receive the unscoped admin-shaped view; the
	// scope source must not even be consulted.
	repo := &stubRepo{}
	scope := &stubScope{}
	svc := NewService(repo, scope, 0)

	_, err := svc.Snapshot(context.Background(), authz.Principal{ID: 10, Role: authz.RoleTeacher})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if scope.calls != 0 {
		t.Fatalf("expected no scope resolution for teacher, got %d calls", scope.calls)
	}
	if repo.lastStudentIDs != nil {
		t.Fatalf("expected unscoped counts, got %v", repo.lastStudentIDs)
	}
}

func TestSnapshotFailsWholeOnFirstError(t *testing.T) {
	repo := &stubRepo{attendance: 10, present: 7, overdueErr: errors.New("db timeout")}
	svc := NewService(repo, &stubScope{}, 0)

	if _, err := svc.Snapshot(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin}); err == nil {
		t.Fatalf("expected snapshot to fail when one count fails")
	}
}

func TestNotificationsEmitsOnlyTriggeredItems(t *testing.T) {
	repo := &stubRepo{overdue: 0, absent: 3, lowGrades: 0}
	svc := NewService(repo, &stubScope{}, 0)

	list, err := svc.Notifications(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("expected exactly one item, got %d", len(list.Items))
	}
	item := list.Items[0]
	if item.Type != TypeAttendanceAlert {
		t.Fatalf("expected ATTENDANCE_ALERT, got %s", item.Type)
	}
	if item.Severity != SeverityMedium {
		t.Fatalf("expected medium severity, got %s", item.Severity)
	}
	if item.Count != 3 {
		t.Fatalf("expected count 3, got %d", item.Count)
	}
}

func TestNotificationsOrderAndSeverity(t *testing.T) {
	repo := &stubRepo{overdue: 2, absent: 1, lowGrades: 4}
	svc := NewService(repo, &stubScope{}, 65)

	list, err := svc.Notifications(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected three items, got %d", len(list.Items))
	}
	wantOrder := []string{TypePaymentOverdue, TypeAttendanceAlert, TypeGradeAlert}
	for i, want := range wantOrder {
		if list.Items[i].Type != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, list.Items[i].Type)
		}
	}
	if list.Items[0].Severity != SeverityHigh {
		t.Fatalf("expected overdue severity high")
	}
	if repo.lastThreshold != 65 {
		t.Fatalf("expected configured threshold 65, got %v", repo.lastThreshold)
	}
}

func TestNotificationsEmptyWhenNothingTriggers(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubScope{}, 0)

	list, err := svc.Notifications(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin})
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if list.Total != 0 || len(list.Items) != 0 {
		t.Fatalf("expected no items, got %+v", list)
	}
}

func TestDayWindowBoundaries(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubScope{}, 0)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	}

	if _, err := svc.Snapshot(context.Background(), authz.Principal{ID: 1, Role: authz.RoleAdmin}); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	wantFrom := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if !repo.lastWindowFrom.Equal(wantFrom) || !repo.lastWindowTo.Equal(wantTo) {
		t.Fatalf("window [%v, %v), want [%v, %v)", repo.lastWindowFrom, repo.lastWindowTo, wantFrom, wantTo)
	}
}
