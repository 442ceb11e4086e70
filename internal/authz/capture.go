package authz

import (
	"context"
	"sync"
)

type captureContextKey struct{}

// Capture lets middleware installed before the identity resolver observe
// the principal resolved later in the chain. One capture per request.
type Capture struct {
	mu sync.Mutex
	p  *Principal
}

func (c *Capture) set(p Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := p
	c.p = &copied
}

// Principal returns the captured principal, or nil when the request never
// resolved one.
func (c *Capture) Principal() *Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p
}

// ContextWithCapture installs a capture slot in the context.
func ContextWithCapture(ctx context.Context) (context.Context, *Capture) {
	capture := &Capture{}
	return context.WithValue(ctx, captureContextKey{}, capture), capture
}
