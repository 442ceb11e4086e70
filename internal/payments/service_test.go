package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

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

type stubRepo struct {
	payments   map[int64]Payment
	lastFilter ListFilter
	lastUpdate Payment
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter) ([]Payment, int, error) {
	s.lastFilter = filter
	return nil, 0, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return Payment{}, shared.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) Create(ctx context.Context, payment Payment) (Payment, error) {
	payment.ID = 999
	s.payments[payment.ID] = payment
	return payment, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, payment Payment) error {
	if _, ok := s.payments[id]; !ok {
		return shared.ErrNotFound
	}
	s.lastUpdate = payment
	return nil
}

func (s *stubRepo) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	return studentID == 500, nil
}

func fixture(scope *stubScope) (*Service, *stubRepo) {
	repo := &stubRepo{payments: map[int64]Payment{
		800: {ID: 800, StudentID: 500, InvoiceNo: "INV-001", Amount: 250000, Status: StatusUnpaid},
	}}
	return NewService(repo, scope), repo
}

var admin = authz.Principal{ID: 1, Role: authz.RoleAdmin}

func invoice(studentID int64) Payment {
	return Payment{
		StudentID: studentID,
		InvoiceNo: "INV-002",
		Amount:    150000,
		Status:    StatusUnpaid,
		DueDate:   time.Now().AddDate(0, 1, 0),
	}
}

func TestCreateAdminOnly(t *testing.T) {
	svc, _ := fixture(&stubScope{})

	_, err := svc.Create(context.Background(), authz.Principal{ID: 10, Role: authz.RoleTeacher}, invoice(500))
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("expected forbidden for teacher, got %v", err)
	}

	if _, err := svc.Create(context.Background(), admin, invoice(500)); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestCreateUnknownStudentIsNotFound(t *testing.T) {
	svc, _ := fixture(&stubScope{})

	_, err := svc.Create(context.Background(), admin, invoice(999))
	if !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateValidatesStatus(t *testing.T) {
	svc, _ := fixture(&stubScope{})

	bad := invoice(500)
	bad.Status = "pending"
	if _, err := svc.Create(context.Background(), admin, bad); !errors.Is(err, httpx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStampsPaidAt(t *testing.T) {
	svc, repo := fixture(&stubScope{})

	err := svc.Update(context.Background(), admin, 800, Payment{
		Amount: 250000, Status: StatusPaid, DueDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.lastUpdate.PaidAt == nil {
		t.Fatalf("expected paid_at stamped on transition to paid")
	}
}

func TestGetOutOfScopeForbidden(t *testing.T) {
	svc, _ := fixture(&stubScope{inScope: false})

	_, err := svc.Get(context.Background(), authz.Principal{ID: 20, Role: authz.RoleStudent}, 800)
	if !errors.Is(err, httpx.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.Get(context.Background(), authz.Principal{ID: 20, Role: authz.RoleStudent}, 999); !errors.Is(err, httpx.ErrNotFound) {
		t.Fatalf("expected not found before scope, got %v", err)
	}
}

func TestListScopedEmptySetQueriesNothing(t *testing.T) {
	svc, repo := fixture(&stubScope{ids: nil})

	if _, _, err := svc.List(context.Background(), authz.Principal{ID: 31, Role: authz.RoleParent}, ListFilter{Page: 1, PageSize: 20}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastFilter.IDs == nil || len(repo.lastFilter.IDs) != 0 {
		t.Fatalf("expected empty id restriction, got %v", repo.lastFilter.IDs)
	}
}
