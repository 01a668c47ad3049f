package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes of an invocation. Callers branch with errors.Is; the
// concrete message travels wrapped inside.
var (
	ErrNotFound     = errors.New("capability not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
	ErrExecution    = errors.New("execution failed")
)

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Unauthorizedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthorized)...)
}

func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

func Executionf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrExecution)...)
}

// Violation is one failed constraint on a declared context slot.
type Violation struct {
	Context string // label when available, raw name otherwise
	Reason  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Context, v.Reason)
}

// ValidationError aggregates every violation found before execution, not
// just the first. errors.Is(err, ErrValidation) matches it.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, "validation failed:")
	for _, v := range e.Violations {
		lines = append(lines, "  - "+v.String())
	}
	return strings.Join(lines, "\n")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
