package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an upstream failure for callers that need to branch on it.
type Kind int

const (
	KindCancelled Kind = iota
	KindNetwork
	KindRateLimited
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindBadRequest
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindCancelled:
		return "cancelled"
	case KindNetwork:
		return "network"
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the request coordinator.
type Error struct {
	Kind        Kind
	Status      int               // upstream HTTP status, 0 for transport failures
	Message     string            // upstream message, if the body carried one
	RetryAfter  time.Duration     // only set for KindRateLimited
	FieldErrors map[string]string // only set for KindBadRequest
	Err         error             // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apierr values by kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Cancelled reports whether err is a caller-initiated cancellation, either as
// an apierr or a raw context error.
func Cancelled(err error) bool {
	if IsKind(err, KindCancelled) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// Retryable reports whether a GET that failed with err may be reissued.
func Retryable(err error) bool {
	var ae *Error
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.Kind {
	case KindNetwork, KindServer, KindRateLimited:
		return true
	default:
		return false
	}
}

// FromStatus maps an upstream HTTP status to an Error. The body message and
// field errors, when the caller decoded any, ride along.
func FromStatus(status int, message string, fieldErrors map[string]string, retryAfter time.Duration) *Error {
	e := &Error{Status: status, Message: message}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthenticated
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.RetryAfter = retryAfter
	case status >= 400 && status < 500:
		e.Kind = KindBadRequest
		e.FieldErrors = fieldErrors
	default:
		e.Kind = KindServer
	}
	return e
}

// HTTPStatus maps an Error back to the status the gateway answers with.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusBadGateway
	}
	switch ae.Kind {
	case KindCancelled:
		return 499 // client closed request
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBadRequest:
		if ae.Status != 0 {
			return ae.Status
		}
		return http.StatusBadRequest
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
