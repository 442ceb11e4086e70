package payments

import "time"

// Status values accepted for a payment.
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusPartial = "partial"
)

// ValidStatus reports whether s is one of the accepted statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPaid, StatusUnpaid, StatusPartial:
		return true
	}
	return false
}

// Payment is one billed item for a student. A payment counts as overdue
// when its status is not paid and the due date has passed.
type Payment struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"studentId"`
	InvoiceNo   string     `json:"invoiceNo"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	DueDate     time.Time  `json:"dueDate"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ListFilter narrows payment listings.
type ListFilter struct {
	StudentID int64
	Status    string
	Overdue   bool
	IDs       []int64
	Page      int
	PageSize  int
}
