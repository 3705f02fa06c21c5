package api

import (
	"context"
	"errors"
	"fmt"
)

// ErrorDomain namespaces all errors produced by this client.
const ErrorDomain = "halcyon-api-client"

// Local error codes within ErrorDomain. Transport and storage failures pass
// through with their own codes.
type Code string

const (
	// CodeRequestMalformed marks descriptors the transport cannot turn
	// into an outgoing request. Never retried.
	CodeRequestMalformed Code = "requestMalformed"

	// CodeInvalidResponseDictionary marks an empty or structurally
	// unusable payload. Never retried.
	CodeInvalidResponseDictionary Code = "invalidResponseDictionary"

	// CodeCachedResponseNotFound marks a cache-path miss.
	CodeCachedResponseNotFound Code = "cachedResponseNotFound"

	// CodeMappingFailure marks a payload the bound model decoder rejected.
	CodeMappingFailure Code = "mappingFailure"

	// CodeTransportFailure marks a failure reported by the transport.
	CodeTransportFailure Code = "transportFailure"

	// CodeStorageFailure marks a response-cache storage error.
	CodeStorageFailure Code = "storageFailure"
)

// Class is the notification-relevant classification of a terminal failure.
type Class string

const (
	// ClassServiceUnavailable failures broadcast a service-unavailable event.
	ClassServiceUnavailable Class = "service_unavailable"

	// ClassInvalidToken failures broadcast an invalid-token event carrying
	// the bearer token of the original request.
	ClassInvalidToken Class = "invalid_token"

	// ClassUnclassified failures reach only the caller's callback.
	ClassUnclassified Class = "unclassified"
)

// Sentinel errors for errors.Is checks.
var (
	ErrRequestMalformed          = errors.New("request malformed")
	ErrInvalidResponseDictionary = errors.New("invalid response dictionary")
	ErrCachedResponseNotFound    = errors.New("cached response not found")
)

// Error is a classified failure within ErrorDomain.
type Error struct {
	Code    Code
	Class   Class
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s/%s]: %s: %v", ErrorDomain, e.Code, e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s/%s]: %s", ErrorDomain, e.Code, e.Class, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error wrapping cause.
func NewError(code Code, class Class, message string, cause error) *Error {
	return &Error{Code: code, Class: class, Message: message, Err: cause}
}

// ClassOf extracts the classification of err, defaulting to unclassified.
func ClassOf(err error) Class {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Class != "" {
		return apiErr.Class
	}
	return ClassUnclassified
}

// CodeOf extracts the local code of err, if it belongs to ErrorDomain.
func CodeOf(err error) (Code, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return "", false
}

// IsCancellation reports whether err was caused by operation cancellation.
// Cancellation is suppressed at the dispatch boundary: no callback fires
// and no notification is broadcast for it. Only context.Canceled counts:
// a client timeout unwraps to context.DeadlineExceeded and must stay a
// retryable transport failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
