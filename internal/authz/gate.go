package authz

// Allowed reports whether the principal's role is in the allowed set.
// An empty set means any authenticated principal passes. Pure function,
// no I/O; a request that passes the gate may still be denied by the
// scope resolver.
func Allowed(p Principal, allowed ...Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, role := range allowed {
		if p.Role == role {
			return true
		}
	}
	return false
}
