package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures for transport mapping.
type Kind string

const (
	KindInternal            Kind = "internal"
	KindUnauthorized        Kind = "unauthorized"
	KindForbidden           Kind = "forbidden"
	KindBadRequest          Kind = "bad_request"
	KindNotFound            Kind = "not_found"
	KindProviderError       Kind = "provider_error"
	KindProviderTimeout     Kind = "provider_timeout"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindStorage             Kind = "storage_error"
	KindRateLimited         Kind = "rate_limited"
)

// Error carries a Kind, a caller-safe message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, message, nil) }
func Forbidden(message string) *Error    { return New(KindForbidden, message, nil) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message, nil) }
func NotFound(message string) *Error     { return New(KindNotFound, message, nil) }

func ProviderError(message string, err error) *Error {
	return New(KindProviderError, message, err)
}

func ProviderTimeout(message string, err error) *Error {
	return New(KindProviderTimeout, message, err)
}

func ProviderUnavailable(message string, err error) *Error {
	return New(KindProviderUnavailable, message, err)
}

func Storage(message string, err error) *Error {
	return New(KindStorage, message, err)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf reports the Kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindProviderTimeout:
		return http.StatusGatewayTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
