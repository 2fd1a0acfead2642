package resilience

import (
	"errors"
	"fmt"
)

// Kind tags an error with a structural category that matchers can dispatch on.
type Kind string

// Common error kinds.
const (
	KindInvalidArgument Kind = "invalid_argument"
	KindInvalidState    Kind = "invalid_state"
	KindNilReference    Kind = "nil_reference"
	KindUnavailable     Kind = "unavailable"
	KindTimeout         Kind = "timeout"
)

// KindError is an error carrying a Kind.
type KindError struct {
	Kind Kind
	Msg  string
	Err  error
}

// NewError returns a *KindError with the given kind and message.
func NewError(kind Kind, msg string) *KindError {
	return &KindError{Kind: kind, Msg: msg}
}

// Errorf returns a *KindError whose message is formatted from format and args.
// A %w verb is honored: the wrapped error is kept for Unwrap.
func Errorf(kind Kind, format string, args ...any) *KindError {
	err := fmt.Errorf(format, args...)
	return &KindError{Kind: kind, Msg: err.Error(), Err: errors.Unwrap(err)}
}

func (e *KindError) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return e.Msg
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *KindError in err's chain, or "".
func KindOf(err error) Kind {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return ""
}

// Matcher reports whether an error belongs to some category.
type Matcher func(err error) bool

// MatchKind matches errors whose chain carries kind.
func MatchKind(kind Kind) Matcher {
	return func(err error) bool {
		return KindOf(err) == kind
	}
}

// MatchIs matches errors for which errors.Is(err, target) holds.
func MatchIs(target error) Matcher {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// MatchAs matches errors whose chain contains an error of type E.
func MatchAs[E error]() Matcher {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// MatchAny matches when any of ms matches.
func MatchAny(ms ...Matcher) Matcher {
	return func(err error) bool {
		for _, m := range ms {
			if m != nil && m(err) {
				return true
			}
		}
		return false
	}
}
