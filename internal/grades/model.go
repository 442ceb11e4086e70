package grades

import "time"

// Grade is one recorded score for a student in a subject. TeacherID is
// the teacher who recorded the score; only that teacher (or an admin)
// may change it afterwards.
type Grade struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"studentId"`
	SubjectID    int64     `json:"subjectId"`
	TeacherID    int64     `json:"teacherId"`
	Semester     int       `json:"semester"`
	AcademicYear string    `json:"academicYear"`
	Kind         string    `json:"kind"`
	Score        float64   `json:"score"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListFilter narrows grade listings.
type ListFilter struct {
	StudentID int64
	SubjectID int64
	Semester  int
	IDs       []int64
	Page      int
	PageSize  int
}
