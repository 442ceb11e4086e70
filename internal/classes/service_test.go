package classes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

type stubRepo struct {
	classes   map[int64]Class
	schedules map[int64][]Schedule
	nextID    int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{classes: map[int64]Class{}, schedules: map[int64][]Schedule{}, nextID: 1}
}

func (r *stubRepo) List(_ context.Context, _ ListFilter) ([]Class, int, error) {
	out := make([]Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *stubRepo) Get(_ context.Context, id int64) (Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return Class{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *stubRepo) Create(_ context.Context, class Class) (Class, error) {
	class.ID = r.nextID
	r.nextID++
	r.classes[class.ID] = class
	return class, nil
}

func (r *stubRepo) Update(_ context.Context, id int64, class Class) error {
	if _, ok := r.classes[id]; !ok {
		return shared.ErrNotFound
	}
	class.ID = id
	r.classes[id] = class
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.classes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.classes, id)
	return nil
}

func (r *stubRepo) ListSchedules(_ context.Context, classID int64) ([]Schedule, error) {
	return r.schedules[classID], nil
}

func (r *stubRepo) CreateSchedule(_ context.Context, schedule Schedule) (Schedule, error) {
	schedule.ID = r.nextID
	r.nextID++
	r.schedules[schedule.ClassID] = append(r.schedules[schedule.ClassID], schedule)
	return schedule, nil
}

func (r *stubRepo) DeleteSchedule(_ context.Context, id int64) error {
	for classID, entries := range r.schedules {
		for i, entry := range entries {
			if entry.ID == id {
				r.schedules[classID] = append(entries[:i], entries[i+1:]...)
				return nil
			}
		}
	}
	return shared.ErrNotFound
}

func TestCreateValidatesFields(t *testing.T) {
	svc := NewService(newStubRepo())
	cases := []struct {
		name  string
		class Class
	}{
		{"missing name", Class{GradeLevel: 10, AcademicYear: "2025/2026"}},
		{"zero grade level", Class{Name: "X IPA 1", AcademicYear: "2025/2026"}},
		{"missing year", Class{Name: "X IPA 1", GradeLevel: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.class)
			require.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	svc := NewService(newStubRepo())
	created, err := svc.Create(context.Background(), Class{Name: "X IPA 1", GradeLevel: 10, AcademicYear: "2025/2026"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "X IPA 1", got.Name)
}

func TestGetMissingIsNotFound(t *testing.T) {
	svc := NewService(newStubRepo())
	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateScheduleChecksClassExists(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	_, err := svc.CreateSchedule(context.Background(), Schedule{
		ClassID: 99, SubjectID: 1, TeacherID: 1, DayOfWeek: 1, StartTime: "07:30", EndTime: "09:00",
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	class, err := svc.Create(context.Background(), Class{Name: "X IPA 1", GradeLevel: 10, AcademicYear: "2025/2026"})
	require.NoError(t, err)

	entry, err := svc.CreateSchedule(context.Background(), Schedule{
		ClassID: class.ID, SubjectID: 1, TeacherID: 1, DayOfWeek: 1, StartTime: "07:30", EndTime: "09:00",
	})
	require.NoError(t, err)
	require.NotZero(t, entry.ID)

	entries, err := svc.ListSchedules(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCreateScheduleRejectsBadDay(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	class, err := svc.Create(context.Background(), Class{Name: "X IPA 1", GradeLevel: 10, AcademicYear: "2025/2026"})
	require.NoError(t, err)

	for _, day := range []int{0, 8, -1} {
		_, err := svc.CreateSchedule(context.Background(), Schedule{
			ClassID: class.ID, SubjectID: 1, TeacherID: 1, DayOfWeek: day, StartTime: "07:30", EndTime: "09:00",
		})
		require.ErrorIs(t, err, httpx.ErrValidation, "day %d", day)
	}
}

func TestDeleteScheduleMissingIsNotFound(t *testing.T) {
	svc := NewService(newStubRepo())
	err := svc.DeleteSchedule(context.Background(), 123)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
