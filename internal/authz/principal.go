// Package authz holds the authorization core: the role gate and the
// per-role ownership rules that decide which rows a principal may touch.
package authz

// Role is a closed set of account roles. Only membership matters.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

// Principal describes the verified actor behind the current request.
// It is built once per request and threaded explicitly through every
// downstream call; it is never stored in package state.
type Principal struct {
	ID   int64
	Role Role
}
