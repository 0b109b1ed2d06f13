package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{InvalidState("bad transition"), http.StatusUnprocessableEntity},
		{Unauthorized("nope"), http.StatusForbidden},
		{RateLimited("slow down"), http.StatusTooManyRequests},
		{Conflict("duplicate"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading sprint: %w", NotFound("sprint not found"))
	if !IsKind(err, KindNotFound) {
		t.Error("IsKind did not see through the wrap")
	}
	if IsKind(err, KindConflict) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Error("IsKind matched a plain error")
	}
}

func TestMessageFormatting(t *testing.T) {
	err := InvalidState("sprint overlaps with %q", "Iteration Two")
	if got, want := err.Error(), `sprint overlaps with "Iteration Two"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Error("Internal did not preserve the cause for errors.Is")
	}
}
