package authz

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context. When a capture
// slot is present it is filled as well, so observers installed earlier in
// the middleware chain can attribute the request.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	if capture, ok := ctx.Value(captureContextKey{}).(*Capture); ok {
		capture.set(p)
	}
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
