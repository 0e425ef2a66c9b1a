package growth

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup matches any *LookupError.
	ErrLookup = errors.New("reference lookup failed")
	// ErrDomain matches any *DomainError.
	ErrDomain = errors.New("invalid reference parameters")
	// ErrInput matches any *InputError.
	ErrInput = errors.New("invalid input")
)

// LookupError is returned when an exact-age lookup finds no reference row.
type LookupError struct {
	Sex      Sex
	Standard Standard
	Month    float64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s/%s reference row for month %g", e.Sex, e.Standard, e.Month)
}

func (e *LookupError) Is(target error) bool { return target == ErrLookup }

// DomainError reports reference parameters the LMS transform cannot use.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// InputError reports a subject measurement outside the accepted range.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

func inputErrorf(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
