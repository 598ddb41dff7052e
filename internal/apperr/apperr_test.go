package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Unauthorized("not authenticated"), http.StatusUnauthorized},
		{NotFound("nope"), http.StatusNotFound},
		{Upstream("provider down", errors.New("timeout")), http.StatusBadGateway},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler context: %w", NotFound("missing"))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf = %v, want not_found", got)
	}
	if got := KindOf(errors.New("anonymous")); got != KindInternal {
		t.Fatalf("KindOf = %v, want internal", got)
	}
}

func TestPublicMessageHidesInternalDetail(t *testing.T) {
	err := Internal(errors.New("pq: connection refused to 10.0.0.3"))
	if got := PublicMessage(err); got != "internal server error" {
		t.Fatalf("PublicMessage = %q", got)
	}

	if got := PublicMessage(Validation("name is required")); got != "name is required" {
		t.Fatalf("PublicMessage = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	if !errors.Is(Upstream("call failed", cause), cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}
