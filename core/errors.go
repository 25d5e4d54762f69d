package core

import "github.com/pkg/errors"

// ErrPaymentUnavailable is returned when no payment provider is configured.
var ErrPaymentUnavailable = errors.New("payment processing not available, please contact the administrator")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// PaymentError reports a payment the provider has not confirmed as successful.
type PaymentError struct {
	PaymentID string
	Status    string
}

func (err PaymentError) Error() string {
	return "payment not completed"
}

func IsPaymentError(err error) bool {
	_, ok := errors.Cause(err).(*PaymentError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
