package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{NotFoundf("capability %q", "x"), ErrNotFound},
		{Unauthorizedf("principal %s", "u1"), ErrUnauthorized},
		{InvalidInputf("bad %s", "payload"), ErrInvalidInput},
		{Executionf("capability %s", "x"), ErrExecution},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Fatalf("%v does not match its sentinel", tc.err)
		}
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Violations: []Violation{
		{Context: "name", Reason: "required context is missing"},
		{Context: "count", Reason: "expected integer, got string \"x\""},
	}}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("ValidationError should match ErrValidation")
	}
	msg := err.Error()
	if !strings.Contains(msg, "name") || !strings.Contains(msg, "count") {
		t.Fatalf("message should list every violation:\n%s", msg)
	}
}
