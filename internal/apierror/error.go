// Package apierror defines the public error taxonomy and the single table
// that translates backend faults into it.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a public error.
type Kind string

const (
	KindValidation            Kind = "ValidationError"
	KindNotFound              Kind = "ResourceNotFound"
	KindCapabilityMismatch    Kind = "AccountCapabilityMismatch"
	KindIdempotencyKeyReused  Kind = "IdempotencyKeyReused"
	KindDownstreamUnavailable Kind = "DownstreamUnavailable"
	KindDownstreamDomain      Kind = "DownstreamDomainError"
	KindUnknownDownstream     Kind = "UnknownDownstreamError"
	KindRateLimited           Kind = "RateLimited"
	KindUnauthorized          Kind = "Unauthorized"
	KindInternal              Kind = "InternalError"
)

// Error is the caller-facing error. Code always matches P<NNNN>.
type Error struct {
	Kind        Kind
	Code        string
	Description string
	HTTPStatus  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Code, e.Kind, e.Description)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is a public error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

const downstreamDescription = "Downstream system error"

// MissingAttribute reports a required request attribute that was absent.
func MissingAttribute(field string) *Error {
	return &Error{
		Kind:        KindValidation,
		Code:        "P0101",
		Description: fmt.Sprintf("Missing mandatory attribute: %s", field),
		HTTPStatus:  http.StatusBadRequest,
	}
}

// InvalidAttribute reports a request attribute with an unacceptable value.
func InvalidAttribute(field, reason string) *Error {
	return &Error{
		Kind:        KindValidation,
		Code:        "P0102",
		Description: fmt.Sprintf("Invalid attribute value: %s. %s", field, reason),
		HTTPStatus:  http.StatusUnprocessableEntity,
	}
}

// UnparseableBody reports a request body that is not valid JSON.
func UnparseableBody() *Error {
	return &Error{
		Kind:        KindValidation,
		Code:        "P0197",
		Description: "Unable to parse JSON",
		HTTPStatus:  http.StatusBadRequest,
	}
}

// InvalidSearchParameters reports every offending search field at once, in
// the order given.
func InvalidSearchParameters(op Operation, fields []string) *Error {
	code := "P0401"
	switch op {
	case OpSearchRefunds:
		code = "P1101"
	case OpSearchAgreements:
		code = "P2401"
	case OpSearchDisputes:
		code = "P0401"
	}
	return &Error{
		Kind:        KindValidation,
		Code:        code,
		Description: fmt.Sprintf("Invalid parameters: %s. See Public API documentation for the correct data formats", strings.Join(fields, ", ")),
		HTTPStatus:  http.StatusUnprocessableEntity,
	}
}

// RecurringNotEnabled reports an agreement operation on an account without
// recurring card capability.
func RecurringNotEnabled() *Error {
	return &Error{
		Kind:        KindCapabilityMismatch,
		Code:        "P0930",
		Description: "Recurring card payments are not enabled for this account",
		HTTPStatus:  http.StatusForbidden,
	}
}

// TooManyRequests reports a rate-limited caller.
func TooManyRequests() *Error {
	return &Error{
		Kind:        KindRateLimited,
		Code:        "P0900",
		Description: "Too many requests",
		HTTPStatus:  http.StatusTooManyRequests,
	}
}

// Internal reports an unexpected failure inside the gateway.
func Internal() *Error {
	return &Error{
		Kind:        KindInternal,
		Code:        "P0999",
		Description: "An unexpected error occurred",
		HTTPStatus:  http.StatusInternalServerError,
	}
}

// RefundNotAvailable reports a refund request for a payment whose refund
// summary does not allow one.
func RefundNotAvailable(status string) *Error {
	return &Error{
		Kind:        KindDownstreamDomain,
		Code:        "P0603",
		Description: fmt.Sprintf("The payment is not available for refund. Payment refund status: %s", status),
		HTTPStatus:  http.StatusBadRequest,
	}
}

// Unauthorized reports a missing, unknown or revoked bearer token.
func Unauthorized() *Error {
	return &Error{
		Kind:        KindUnauthorized,
		Code:        "P0920",
		Description: "Credentials are required to access this resource",
		HTTPStatus:  http.StatusUnauthorized,
	}
}
