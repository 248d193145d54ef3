package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error identifier returned to API clients.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"

	CodeConfiguration         Code = "CONFIGURATION_ERROR"
	CodeGateway               Code = "PAYMENT_GATEWAY_ERROR"
	CodeInsufficientInventory Code = "INSUFFICIENT_INVENTORY"
	CodeSignature             Code = "SIGNATURE_VERIFICATION_FAILED"
)

// Metadata controls how a code is rendered over HTTP. When ExposeMessage is
// set the error's own message replaces PublicMessage in responses.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	ExposeMessage  bool
	DetailsAllowed bool
}

type flag uint8

const (
	retryable flag = 1 << iota
	exposeMessage
	detailsAllowed
)

func meta(status int, public string, flags flag) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      flags&retryable != 0,
		ExposeMessage:  flags&exposeMessage != 0,
		DetailsAllowed: flags&detailsAllowed != 0,
	}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:   meta(http.StatusBadRequest, "validation failed", exposeMessage|detailsAllowed),
	CodeUnauthorized: meta(http.StatusUnauthorized, "authentication required", exposeMessage),
	CodeForbidden:    meta(http.StatusForbidden, "access denied", exposeMessage),
	CodeNotFound:     meta(http.StatusNotFound, "resource not found", exposeMessage),
	CodeConflict:     meta(http.StatusConflict, "conflict detected", exposeMessage),
	CodeIdempotency:  meta(http.StatusConflict, "idempotency key reused", exposeMessage|detailsAllowed),
	CodeInternal:     meta(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency:   meta(http.StatusServiceUnavailable, "dependency unavailable", retryable|detailsAllowed),

	// gateway and config failures never leak their cause to callers
	CodeConfiguration:         meta(http.StatusInternalServerError, "service is not configured for payments", 0),
	CodeGateway:               meta(http.StatusInternalServerError, "payment gateway request failed", retryable),
	CodeInsufficientInventory: meta(http.StatusBadRequest, "insufficient inventory", exposeMessage|detailsAllowed),
	CodeSignature:             meta(http.StatusBadRequest, "webhook signature verification failed", 0),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error carries a Code, a message safe for logs and an optional cause.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
