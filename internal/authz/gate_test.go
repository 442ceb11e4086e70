package authz

import "testing"

func TestAllowed(t *testing.T) {
	cases := []struct {
		name    string
		role    Role
		allowed []Role
		want    bool
	}{
		{"member", RoleTeacher, []Role{RoleAdmin, RoleTeacher}, true},
		{"non-member", RoleStudent, []Role{RoleAdmin, RoleTeacher}, false},
		{"empty set admits anyone", RoleParent, nil, true},
		{"single role", RoleAdmin, []Role{RoleAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Principal{ID: 1, Role: tc.role}
			if got := Allowed(p, tc.allowed...); got != tc.want {
				t.Fatalf("Allowed(%v, %v) = %v, want %v", tc.role, tc.allowed, got, tc.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleParent} {
		if !role.Valid() {
			t.Fatalf("expected %s valid", role)
		}
	}
	if Role("SUPERUSER").Valid() {
		t.Fatalf("expected unknown role invalid")
	}
}
