package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"conflict", ErrConflict, http.StatusConflict},
		{"unprocessable", ErrUnprocessable, http.StatusUnprocessableEntity},
		{"rate limited", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("loading user: %w", ErrNotFound), http.StatusNotFound},
		{"app error explicit code", New(http.StatusTeapot, "odd", nil), http.StatusTeapot},
		{"app error wrapping sentinel", New(http.StatusConflict, "dup", ErrConflict), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapErrorToStatus(tt.err); got != tt.want {
				t.Errorf("MapErrorToStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusForbidden, "resume belongs to another user", ErrForbidden)
	if err.Error() != "resume belongs to another user" {
		t.Errorf("Error() = %q, want the message", err.Error())
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("AppError does not unwrap to its sentinel")
	}

	bare := New(http.StatusNotFound, "", ErrNotFound)
	if bare.Error() != ErrNotFound.Error() {
		t.Errorf("Error() without message = %q, want wrapped error text", bare.Error())
	}
}
