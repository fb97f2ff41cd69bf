package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind Kind
	}{
		{name: "401 unauthenticated", status: http.StatusUnauthorized, wantKind: KindUnauthenticated},
		{name: "403 forbidden", status: http.StatusForbidden, wantKind: KindForbidden},
		{name: "404 not found", status: http.StatusNotFound, wantKind: KindNotFound},
		{name: "429 rate limited", status: http.StatusTooManyRequests, wantKind: KindRateLimited},
		{name: "422 bad request", status: http.StatusUnprocessableEntity, wantKind: KindBadRequest},
		{name: "500 server", status: http.StatusInternalServerError, wantKind: KindServer},
		{name: "503 server", status: http.StatusServiceUnavailable, wantKind: KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromStatus(tt.status, "", nil, 0)
			if e.Kind != tt.wantKind {
				t.Errorf("FromStatus(%d).Kind = %v, want %v", tt.status, e.Kind, tt.wantKind)
			}
			if e.Status != tt.status {
				t.Errorf("FromStatus(%d).Status = %d", tt.status, e.Status)
			}
		})
	}
}

func TestFromStatusRetryAfter(t *testing.T) {
	e := FromStatus(http.StatusTooManyRequests, "slow down", nil, 3*time.Second)
	if e.RetryAfter != 3*time.Second {
		t.Errorf("RetryAfter = %v, want 3s", e.RetryAfter)
	}
}

func TestFromStatusFieldErrors(t *testing.T) {
	fe := map[string]string{"title": "required"}
	e := FromStatus(http.StatusBadRequest, "invalid", fe, 0)
	if e.FieldErrors["title"] != "required" {
		t.Errorf("FieldErrors not carried: %v", e.FieldErrors)
	}
	// Field errors only attach to bad requests.
	e = FromStatus(http.StatusInternalServerError, "boom", fe, 0)
	if e.FieldErrors != nil {
		t.Errorf("FieldErrors should not attach to server errors")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "network", err: New(KindNetwork, "dial"), want: true},
		{name: "server", err: FromStatus(500, "", nil, 0), want: true},
		{name: "rate limited", err: FromStatus(429, "", nil, 0), want: true},
		{name: "not found", err: FromStatus(404, "", nil, 0), want: false},
		{name: "cancelled", err: New(KindCancelled, ""), want: false},
		{name: "plain error", err: errors.New("nope"), want: false},
		{name: "wrapped network", err: fmt.Errorf("fetch: %w", New(KindNetwork, "timeout")), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCancelled(t *testing.T) {
	if !Cancelled(New(KindCancelled, "gone")) {
		t.Errorf("Cancelled() should match KindCancelled")
	}
	if !Cancelled(context.Canceled) {
		t.Errorf("Cancelled() should match context.Canceled")
	}
	if Cancelled(New(KindNetwork, "")) {
		t.Errorf("Cancelled() should not match network errors")
	}
}

func TestErrorsIsByKind(t *testing.T) {
	err := fmt.Errorf("list fetch: %w", FromStatus(401, "token expired", nil, 0))
	if !errors.Is(err, New(KindUnauthenticated, "")) {
		t.Errorf("errors.Is should match by kind through wrapping")
	}
}

func TestHTTPStatus(t *testing.T) {
	if got := HTTPStatus(New(KindUnauthenticated, "")); got != http.StatusUnauthorized {
		t.Errorf("HTTPStatus(unauthenticated) = %d", got)
	}
	if got := HTTPStatus(errors.New("opaque")); got != http.StatusBadGateway {
		t.Errorf("HTTPStatus(opaque) = %d", got)
	}
	if got := HTTPStatus(FromStatus(422, "", nil, 0)); got != 422 {
		t.Errorf("HTTPStatus(422) = %d, want preserved status", got)
	}
}
