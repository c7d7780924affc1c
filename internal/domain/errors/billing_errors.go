package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Billing error kinds. Callers match them with errors.Is and decide the
// response by Classify, never by message text.
var (
	// ErrSignatureInvalid indicates a webhook whose signature header is missing or does not match
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrValidation indicates malformed or unsupported input; retrying cannot help
	ErrValidation = errors.New("validation error")

	// ErrReferencedEntityMissing indicates a lookup miss that is acknowledged as a no-op
	ErrReferencedEntityMissing = errors.New("referenced entity missing")

	// ErrExternalProvider indicates a transient failure talking to the payment provider
	ErrExternalProvider = errors.New("external provider error")

	// ErrLedgerUnbalanced indicates debit and credit totals of an export diverged
	ErrLedgerUnbalanced = errors.New("ledger unbalanced")

	// ErrNotFound indicates a requested resource does not exist for the caller
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a state change the entity does not allow
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Class is the retry class of an error as seen by the payment provider.
type Class int

const (
	// ClassNone is a nil error.
	ClassNone Class = iota
	ClassNoOp
	ClassPermanent
	ClassTransient
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassNoOp:
		return "noop"
	case ClassPermanent:
		return "permanent"
	default:
		return "transient"
	}
}

// Classify maps any error to its retry class. Unknown errors are transient.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrReferencedEntityMissing):
		return ClassNoOp
	case errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrValidation):
		return ClassPermanent
	default:
		return ClassTransient
	}
}

// HTTPStatusFor returns the webhook response status for a class.
func HTTPStatusFor(c Class) int {
	switch c {
	case ClassNone, ClassNoOp:
		return http.StatusOK
	case ClassPermanent:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Validationf wraps ErrValidation with detail.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Missingf wraps ErrReferencedEntityMissing with detail.
func Missingf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrReferencedEntityMissing, fmt.Sprintf(format, args...))
}

// Provider wraps a provider failure as transient, keeping the cause in the chain.
func Provider(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalProvider, op, cause)
}
