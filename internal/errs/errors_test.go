package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorIs(t *testing.T) {
	wrapped := ErrBufferLimit.Wrap(io.ErrUnexpectedEOF)
	if !errors.Is(wrapped, ErrBufferLimit) {
		t.Fatal("wrapped error should match its kind")
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Fatal("wrapped error should match its cause")
	}
	if errors.Is(wrapped, ErrBodyUsed) {
		t.Fatal("kinds should not match each other")
	}
	if got := wrapped.Error(); got != "exceeded max buffer size: unexpected EOF" {
		t.Errorf("Error() = %q", got)
	}
	if ErrBodyUsed.Wrap(nil) != ErrBodyUsed {
		t.Error("wrapping nil should keep the bare kind")
	}

	outer := fmt.Errorf("reading: %w", ErrBodyDestroyed)
	if !errors.Is(outer, ErrBodyDestroyed) {
		t.Error("kind should survive fmt wrapping")
	}
}
