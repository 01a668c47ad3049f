package auth

import (
	"sync"

	"caprun/internal/domain"
)

// Elevate returns a call-local system principal impersonating the
// runtime's highest-trust identity, plus a release function. Release is
// safe to call more than once but takes effect exactly once; after it the
// principal no longer carries system trust. Nothing process-wide is
// mutated, so concurrent invocations on the same caller stay independent.
func Elevate(caller *domain.Principal) (*domain.Principal, func()) {
	sys := &domain.Principal{System: true}
	if caller != nil {
		sys.ID = caller.ID
		sys.Name = caller.Name
	}
	var once sync.Once
	release := func() {
		once.Do(func() { sys.System = false })
	}
	return sys, release
}
