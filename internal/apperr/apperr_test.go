package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "typed error keeps its kind",
			err:  New(KindValidationFailure, "bad input"),
			want: KindValidationFailure,
		},
		{
			name: "wrapped typed error keeps its kind",
			err:  fmt.Errorf("handler: %w", New(KindPersistenceConflict, "busy")),
			want: KindPersistenceConflict,
		},
		{
			name: "untyped error defaults to transport unavailable",
			err:  errors.New("connection refused"),
			want: KindTransportUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(New(KindNotAuthorized, "invalid email or password")); got != "invalid email or password" {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(errors.New("raw")); got != "service temporarily unavailable, please retry" {
		t.Errorf("MessageOf() fallback = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotAuthorized, 401},
		{KindValidationFailure, 400},
		{KindPersistenceConflict, 409},
		{KindTransportUnavailable, 503},
		{KindActivationPartialFailure, 503},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.kind); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Wrap(KindTransportUnavailable, "outer", inner)
	if !errors.Is(wrapped, inner) {
		t.Error("Wrap should preserve the inner error for errors.Is")
	}
}
