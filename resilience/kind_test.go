package resilience

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := NewError(KindInvalidState, "bad state")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", base, KindInvalidState},
		{"wrapped", fmt.Errorf("outer: %w", base), KindInvalidState},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindError_Message(t *testing.T) {
	if got := NewError(KindTimeout, "").Error(); got != "timeout" {
		t.Errorf("Error() = %q, want kind name", got)
	}
	if got := NewError(KindTimeout, "took too long").Error(); got != "took too long" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorf_KeepsWrapped(t *testing.T) {
	err := Errorf(KindUnavailable, "reading config: %w", io.ErrUnexpectedEOF)

	if err.Error() != "reading config: unexpected EOF" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("wrapped error lost")
	}
	if err.Kind != KindUnavailable {
		t.Errorf("Kind = %q", err.Kind)
	}
}

func TestMatchers(t *testing.T) {
	pathErr := &os.PathError{Op: "open", Path: "/nope", Err: os.ErrNotExist}
	kindErr := fmt.Errorf("ctx: %w", NewError(KindInvalidArgument, "bad"))

	tests := []struct {
		name  string
		match Matcher
		err   error
		want  bool
	}{
		{"kind hit", MatchKind(KindInvalidArgument), kindErr, true},
		{"kind miss", MatchKind(KindInvalidState), kindErr, false},
		{"is hit", MatchIs(os.ErrNotExist), pathErr, true},
		{"is miss", MatchIs(io.EOF), pathErr, false},
		{"as hit", MatchAs[*os.PathError](), fmt.Errorf("wrap: %w", pathErr), true},
		{"as miss", MatchAs[*os.PathError](), kindErr, false},
		{"any hit", MatchAny(MatchIs(io.EOF), MatchKind(KindInvalidArgument)), kindErr, true},
		{"any miss", MatchAny(nil, MatchIs(io.EOF)), kindErr, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.match(tt.err); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}
}
