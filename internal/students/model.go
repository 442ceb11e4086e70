package students

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ClassID   int64     `json:"classId"`
	NIS       string    `json:"nis"`
	FullName  string    `json:"fullName"`
	Gender    string    `json:"gender"`
	BirthDate time.Time `json:"birthDate"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

// ListFilter encapsulates allowed search parameters for listing students.
type ListFilter struct {
	Search   string
	ClassID  int64
	IDs      []int64
	Page     int
	PageSize int
}
