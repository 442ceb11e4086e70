package payments

import (
	"context"
	"errors"
	"time"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// ScopeResolver is the slice of the authorization core this module needs.
type ScopeResolver interface {
	InScope(ctx context.Context, p authz.Principal, ref authz.ResourceRef, action authz.Action) (bool, error)
	AccessibleStudentIDs(ctx context.Context, p authz.Principal) (ids []int64, unscoped bool, err error)
}

// Service handles billing. Writes are admin-only; reads follow the usual
// scope set so students and parents see their own invoices.
type Service struct {
	repo  Repository
	scope ScopeResolver
}

// NewService constructs a Service.
func NewService(repo Repository, scope ScopeResolver) *Service {
	return &Service{repo: repo, scope: scope}
}

// List returns the payments visible to the principal.
func (s *Service) List(ctx context.Context, p authz.Principal, filter ListFilter) ([]Payment, int, error) {
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

// Get fetches one payment, checking existence before scope.
func (s *Service) Get(ctx context.Context, p authz.Principal, id int64) (Payment, error) {
	payment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Payment{}, httpx.ErrNotFound
		}
		return Payment{}, err
	}
	ok, err := s.scope.InScope(ctx, p, authz.PaymentRef(payment.ID, payment.StudentID), authz.ActionView)
	if err != nil {
		return Payment{}, err
	}
	if !ok {
		return Payment{}, httpx.ErrForbidden
	}
	return payment, nil
}

// Create bills a student. Admin only.
func (s *Service) Create(ctx context.Context, p authz.Principal, payment Payment) (Payment, error) {
	if !authz.Allowed(p, authz.RoleAdmin) {
		return Payment{}, httpx.ErrForbidden
	}
	if payment.StudentID <= 0 || payment.InvoiceNo == "" || payment.Amount <= 0 ||
		!ValidStatus(payment.Status) || payment.DueDate.IsZero() {
		return Payment{}, httpx.ErrValidation
	}
	exists, err := s.repo.StudentExists(ctx, payment.StudentID)
	if err != nil {
		return Payment{}, err
	}
	if !exists {
		return Payment{}, httpx.ErrNotFound
	}
	return s.repo.Create(ctx, payment)
}

// Update changes an existing payment. Admin only. Marking a payment paid
// stamps paid_at when the caller did not supply one.
func (s *Service) Update(ctx context.Context, p authz.Principal, id int64, payment Payment) error {
	if !authz.Allowed(p, authz.RoleAdmin) {
		return httpx.ErrForbidden
	}
	if !ValidStatus(payment.Status) || payment.Amount <= 0 {
		return httpx.ErrValidation
	}
	if payment.Status == StatusPaid && payment.PaidAt == nil {
		now := time.Now().UTC()
		payment.PaidAt = &now
	}
	err := s.repo.Update(ctx, id, payment)
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
