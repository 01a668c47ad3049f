package domain

import "context"

// Principal identifies the caller of an invocation. System principals are
// the runtime's highest-trust identity; capabilities execute as one for the
// scope of a single invocation.
type Principal struct {
	ID     string
	Name   string
	System bool
}

// Authorizer decides whether a principal may invoke a capability. It is
// consulted before any coercion or side effect.
type Authorizer interface {
	Authorize(ctx context.Context, p *Principal, capabilityID string) error
}
