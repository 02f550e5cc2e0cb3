package onboarding

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an onboarding failure.
type Kind uint8

const (
	KindUnauthorized Kind = iota + 1
	KindInvalidSubmission
	KindStorageFailure
	KindPersistenceFailure
	KindUnexpected
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrUnauthorized       = errors.New("onboarding: unauthorized")        //nolint:gochecknoglobals // sentinel error
	ErrInvalidSubmission  = errors.New("onboarding: invalid submission")  //nolint:gochecknoglobals // sentinel error
	ErrStorageFailure     = errors.New("onboarding: storage failure")     //nolint:gochecknoglobals // sentinel error
	ErrPersistenceFailure = errors.New("onboarding: persistence failure") //nolint:gochecknoglobals // sentinel error
	ErrUnexpected         = errors.New("onboarding: unexpected failure")  //nolint:gochecknoglobals // sentinel error
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidSubmission:
		return "invalid submission"
	case KindStorageFailure:
		return "storage failure"
	case KindPersistenceFailure:
		return "persistence failure"
	case KindUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindInvalidSubmission:
		return ErrInvalidSubmission
	case KindStorageFailure:
		return ErrStorageFailure
	case KindPersistenceFailure:
		return ErrPersistenceFailure
	default:
		return ErrUnexpected
	}
}

// Error is the only error type returned by Service.Onboard. Op names the
// sub-operation that failed, Field the form field involved and Index the
// list position (-1 when the failure is not list-driven). Progress lists
// every step completed before the failure.
type Error struct {
	Kind     Kind
	Op       string
	Field    string
	Index    int
	Detail   string
	Progress *Progress
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("onboarding: ")
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
		if e.Index >= 0 {
			fmt.Fprintf(&b, " [%d]", e.Index)
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of an onboarding error, or zero if err is not one.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return 0
}
