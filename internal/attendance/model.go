package attendance

import "time"

// Status values accepted for an attendance record.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusSick    = "sick"
	StatusLeave   = "leave"
)

// ValidStatus reports whether s is one of the accepted statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusSick, StatusLeave:
		return true
	}
	return false
}

// Record is one attendance mark for a student on a date.
type Record struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"studentId"`
	ClassID    int64     `json:"classId"`
	Status     string    `json:"status"`
	AttendedAt time.Time `json:"attendedAt"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListFilter narrows attendance listings.
type ListFilter struct {
	StudentID int64
	ClassID   int64
	From      time.Time
	To        time.Time
	Status    string
	IDs       []int64
	Page      int
	PageSize  int
}
