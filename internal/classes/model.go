package classes

import "time"

// Class is a homeroom group of students within an academic year.
type Class struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	GradeLevel   int       `json:"gradeLevel"`
	AcademicYear string    `json:"academicYear"`
	HomeroomID   *int64    `json:"homeroomTeacherId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Schedule assigns a teacher to teach a subject in a class on a weekday.
// Ownership checks for grades and attendance walk these rows.
type Schedule struct {
	ID        int64     `json:"id"`
	ClassID   int64     `json:"classId"`
	SubjectID int64     `json:"subjectId"`
	TeacherID int64     `json:"teacherId"`
	DayOfWeek int       `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter narrows class listings.
type ListFilter struct {
	Search       string
	AcademicYear string
	Page         int
	PageSize     int
}
