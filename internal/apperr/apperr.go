package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a failure class. Handlers put it in the error envelope so
// the frontend can branch on it instead of parsing message text.
type Code string

const (
	CodeValidation            Code = "validation_error"
	CodeProductNotFound       Code = "product_not_found"
	CodeInsufficientStock     Code = "insufficient_stock"
	CodeInvalidTransition     Code = "invalid_transition"
	CodeSubscriptionExhausted Code = "subscription_exhausted"
	CodeDuplicatePayment      Code = "duplicate_payment"
	CodeNotFound              Code = "not_found"
	CodePersistence           Code = "persistence_error"
)

// Error carries a taxonomy code plus a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func ProductNotFound(id uint) *Error {
	return &Error{Code: CodeProductNotFound, Message: fmt.Sprintf("product %d not found", id)}
}

func InsufficientStock(name string) *Error {
	return &Error{Code: CodeInsufficientStock, Message: fmt.Sprintf("insufficient stock for %s", name)}
}

func InvalidTransition(from, to string) *Error {
	return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf("cannot transition order from %s to %s", from, to)}
}

func SubscriptionExhausted(msg string) *Error {
	return &Error{Code: CodeSubscriptionExhausted, Message: msg}
}

func DuplicatePayment(orderID uint) *Error {
	return &Error{Code: CodeDuplicatePayment, Message: fmt.Sprintf("order %d already has a completed payment", orderID)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a transient storage failure. The whole operation is safe
// to retry; individual steps are not.
func Persistence(err error) *Error {
	return &Error{Code: CodePersistence, Message: "storage failure", Err: err}
}

// CodeOf extracts the taxonomy code, defaulting to persistence for unknown
// errors so callers never see a raw driver message.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodePersistence
}

// HTTPStatus maps a taxonomy code to the response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeInsufficientStock, CodeInvalidTransition,
		CodeSubscriptionExhausted, CodeDuplicatePayment:
		return http.StatusBadRequest
	case CodeProductNotFound, CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text without internal error detail.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
