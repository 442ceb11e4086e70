package audit

import (
	"context"
	"fmt"
)

// Service mengoordinasikan listing audit log untuk admin.
type Service struct {
	repo Repository
}

// NewService membuat service audit baru.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List mengambil audit log dengan paging dan filter.
func (s *Service) List(ctx context.Context, filters Filters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.PageSize > 100 {
		filters.PageSize = 100
	}
	entries, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Entries:  entries,
		Page:     filters.Page,
		PageSize: filters.PageSize,
		Total:    total,
	}, nil
}
