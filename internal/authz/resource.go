package authz

// ResourceKind identifies the kind of entity a scope check targets.
type ResourceKind int

const (
	KindStudent ResourceKind = iota
	KindClass
	KindGrade
	KindAttendance
	KindPayment
)

// String returns the kind name for logs and fact justifications.
func (k ResourceKind) String() string {
	switch k {
	case KindStudent:
		return "student"
	case KindClass:
		return "class"
	case KindGrade:
		return "grade"
	case KindAttendance:
		return "attendance"
	case KindPayment:
		return "payment"
	}
	return "unknown"
}

// Action distinguishes reading and creating from mutating existing rows.
// The distinction matters for grades: teaching a class allows creating a
// grade but not modifying one recorded by another teacher.
type Action int

const (
	ActionView Action = iota
	ActionCreate
	ActionModify
)

// ResourceRef identifies the entity being accessed. It is owned by the
// request and never cached across requests.
type ResourceRef struct {
	Kind      ResourceKind
	ID        int64
	StudentID int64
	TeacherID int64
}

// StudentRef builds a reference to a student row.
func StudentRef(id int64) ResourceRef {
	return ResourceRef{Kind: KindStudent, ID: id, StudentID: id}
}

// ClassRef builds a reference to a class row.
func ClassRef(id int64) ResourceRef {
	return ResourceRef{Kind: KindClass, ID: id}
}

// GradeRef builds a reference to a grade row. teacherID is the grade's
// recorded teacher, not the caller.
func GradeRef(id, studentID, teacherID int64) ResourceRef {
	return ResourceRef{Kind: KindGrade, ID: id, StudentID: studentID, TeacherID: teacherID}
}

// AttendanceRef builds a reference to an attendance row.
func AttendanceRef(id, studentID int64) ResourceRef {
	return ResourceRef{Kind: KindAttendance, ID: id, StudentID: studentID}
}

// PaymentRef builds a reference to a payment row.
func PaymentRef(id, studentID int64) ResourceRef {
	return ResourceRef{Kind: KindPayment, ID: id, StudentID: studentID}
}
