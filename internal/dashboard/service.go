package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
)

// DefaultLowGradeThreshold applies when no threshold is configured.
const DefaultLowGradeThreshold = 70

// Repository exposes the counting queries the dashboard composes.
// A nil studentIDs slice means unscoped; an empty slice matches nothing.
type Repository interface {
	CountStudents(ctx context.Context, studentIDs []int64) (int64, error)
	CountTeachers(ctx context.Context) (int64, error)
	CountClasses(ctx context.Context) (int64, error)
	CountPayments(ctx context.Context, studentIDs []int64) (int64, error)
	CountAttendance(ctx context.Context, from, to time.Time, studentIDs []int64) (int64, error)
	CountAttendancePresent(ctx context.Context, from, to time.Time, studentIDs []int64) (int64, error)
	CountAttendanceAbsent(ctx context.Context, from, to time.Time, studentIDs []int64) (int64, error)
	CountOverduePayments(ctx context.Context, before time.Time, studentIDs []int64) (int64, error)
	AverageGrade(ctx context.Context, studentIDs []int64) (float64, error)
	CountLowGrades(ctx context.Context, threshold float64, studentIDs []int64) (int64, error)
}

// ScopeSource resolves the student id set a principal may see.
type ScopeSource interface {
	AccessibleStudentIDs(ctx context.Context, p authz.Principal) (ids []int64, unscoped bool, err error)
}

// Service computes role-shaped KPI snapshots and threshold notifications.
type Service struct {
	repo      Repository
	scope     ScopeSource
	threshold float64
	now       func() time.Time
	printer   *message.Printer
}

// NewService wires the dashboard service. lowGradeThreshold <= 0 falls back
// to the default.
func NewService(repo Repository, scope ScopeSource, lowGradeThreshold float64) *Service {
	if lowGradeThreshold <= 0 {
		lowGradeThreshold = DefaultLowGradeThreshold
	}
	return &Service{
		repo:      repo,
		scope:     scope,
		threshold: lowGradeThreshold,
		now:       time.Now,
		printer:   message.NewPrinter(language.Indonesian),
	}
}

// scopedStudentIDs role-shapes the input set. STUDENT and PARENT are
// narrowed to their own student ids before any counting query is issued.
// ADMIN and TEACHER both get the unscoped school-wide view; teacher
// dashboards deliberately show the whole school even though their record
// access is class-scoped.
func (s *Service) scopedStudentIDs(ctx context.Context, p authz.Principal) ([]int64, error) {
	switch p.Role {
	case authz.RoleStudent, authz.RoleParent:
		ids, _, err := s.scope.AccessibleStudentIDs(ctx, p)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []int64{}
		}
		return ids, nil
	default:
		return nil, nil
	}
}

func (s *Service) dayWindow() (from, to time.Time) {
	now := s.now()
	from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}

// Snapshot computes the KPI card for the principal. All counts fan out
// concurrently; the first failure fails the whole snapshot, since a
// partial one would be misleading.
func (s *Service) Snapshot(ctx context.Context, p authz.Principal) (KpiSnapshot, error) {
	ids, err := s.scopedStudentIDs(ctx, p)
	if err != nil {
		return KpiSnapshot{}, err
	}
	from, to := s.dayWindow()

	var snapshot KpiSnapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountStudents(ctx, ids)
		snapshot.TotalStudents = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountTeachers(ctx)
		snapshot.TotalTeachers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountClasses(ctx)
		snapshot.TotalClasses = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountPayments(ctx, ids)
		snapshot.TotalPayments = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAttendance(ctx, from, to, ids)
		snapshot.AttendanceToday = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAttendancePresent(ctx, from, to, ids)
		snapshot.AttendancePresentToday = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountOverduePayments(ctx, from, ids)
		snapshot.OverduePayments = n
		return err
	})
	g.Go(func() error {
		avg, err := s.repo.AverageGrade(ctx, ids)
		snapshot.AverageGrade = round2(avg)
		return err
	})

	if err := g.Wait(); err != nil {
		return KpiSnapshot{}, err
	}

	if snapshot.AttendanceToday > 0 {
		rate := float64(snapshot.AttendancePresentToday) / float64(snapshot.AttendanceToday) * 100
		snapshot.AttendanceRateToday = round2(rate)
	}
	return snapshot, nil
}

// Notifications evaluates the alert thresholds for the principal. Items
// whose trigger count is zero are omitted entirely; emission order is
// payments, then attendance, then grades.
func (s *Service) Notifications(ctx context.Context, p authz.Principal) (NotificationList, error) {
	ids, err := s.scopedStudentIDs(ctx, p)
	if err != nil {
		return NotificationList{}, err
	}
	from, to := s.dayWindow()

	var overdue, absent, lowGrades int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountOverduePayments(gctx, from, ids)
		overdue = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountAttendanceAbsent(gctx, from, to, ids)
		absent = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountLowGrades(gctx, s.threshold, ids)
		lowGrades = n
		return err
	})
	if err := g.Wait(); err != nil {
		return NotificationList{}, err
	}

	items := make([]NotificationItem, 0, 3)
	if overdue > 0 {
		items = append(items, NotificationItem{
			ID:       uuid.NewString(),
			Type:     TypePaymentOverdue,
			Severity: SeverityHigh,
			Title:    "Pembayaran terlambat",
			Message:  s.printer.Sprintf("%d tagihan sudah melewati jatuh tempo", overdue),
			Count:    overdue,
			Link:     "/payments?status=overdue",
		})
	}
	if absent > 0 {
		items = append(items, NotificationItem{
			ID:       uuid.NewString(),
			Type:     TypeAttendanceAlert,
			Severity: SeverityMedium,
			Title:    "Ketidakhadiran hari ini",
			Message:  s.printer.Sprintf("%d siswa tidak hadir hari ini", absent),
			Count:    absent,
			Link:     "/attendance?when=today",
		})
	}
	if lowGrades > 0 {
		items = append(items, NotificationItem{
			ID:       uuid.NewString(),
			Type:     TypeGradeAlert,
			Severity: SeverityMedium,
			Title:    "Nilai di bawah ambang",
			Message:  s.printer.Sprintf("%d nilai berada di bawah ambang %.0f", lowGrades, s.threshold),
			Count:    lowGrades,
			Link:     "/grades?filter=below-threshold",
		})
	}
	return NotificationList{Total: len(items), Items: items}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
