package dashboard

// KpiSnapshot contains the key indicators surfaced on the dashboard.
// It is role-shaped and recomputed fresh on every request; a snapshot is
// never cached or persisted.
type KpiSnapshot struct {
	TotalStudents          int64   `json:"totalStudents"`
	TotalTeachers          int64   `json:"totalTeachers"`
	TotalClasses           int64   `json:"totalClasses"`
	TotalPayments          int64   `json:"totalPayments"`
	AttendanceToday        int64   `json:"attendanceToday"`
	AttendancePresentToday int64   `json:"attendancePresentToday"`
	AttendanceRateToday    float64 `json:"attendanceRateToday"`
	OverduePayments        int64   `json:"overduePayments"`
	AverageGrade           float64 `json:"averageGrade"`
}

// Notification types and severities.
const (
	TypePaymentOverdue  = "PAYMENT_OVERDUE"
	TypeAttendanceAlert = "ATTENDANCE_ALERT"
	TypeGradeAlert      = "GRADE_ALERT"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// NotificationItem is one threshold-triggered alert. Ephemeral: recomputed
// on every request, never persisted.
type NotificationItem struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Count    int64  `json:"count"`
	Link     string `json:"link"`
}

// NotificationList wraps the emitted items.
type NotificationList struct {
	Total int                `json:"total"`
	Items []NotificationItem `json:"items"`
}
