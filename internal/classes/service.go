package classes

import (
	"context"
	"errors"

	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Service wraps the repository with input checks. Class and schedule
// management is admin-only; the router enforces the role, listings are
// open to any authenticated principal.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Class, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Class, error) {
	class, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Class{}, httpx.ErrNotFound
	}
	return class, err
}

func (s *Service) Create(ctx context.Context, class Class) (Class, error) {
	if class.Name == "" || class.GradeLevel <= 0 || class.AcademicYear == "" {
		return Class{}, httpx.ErrValidation
	}
	return s.repo.Create(ctx, class)
}

func (s *Service) Update(ctx context.Context, id int64, class Class) error {
	if id <= 0 || class.Name == "" || class.GradeLevel <= 0 {
		return httpx.ErrValidation
	}
	err := s.repo.Update(ctx, id, class)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}

func (s *Service) ListSchedules(ctx context.Context, classID int64) ([]Schedule, error) {
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	return s.repo.ListSchedules(ctx, classID)
}

func (s *Service) CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error) {
	if schedule.ClassID <= 0 || schedule.SubjectID <= 0 || schedule.TeacherID <= 0 {
		return Schedule{}, httpx.ErrValidation
	}
	if schedule.DayOfWeek < 1 || schedule.DayOfWeek > 7 {
		return Schedule{}, httpx.ErrValidation
	}
	if _, err := s.Get(ctx, schedule.ClassID); err != nil {
		return Schedule{}, err
	}
	return s.repo.CreateSchedule(ctx, schedule)
}

func (s *Service) DeleteSchedule(ctx context.Context, id int64) error {
	err := s.repo.DeleteSchedule(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
