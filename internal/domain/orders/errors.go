package orders

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an order, menu item, or location id is
// unknown. Repositories map their backend's no-rows error onto this.
var ErrNotFound = errors.New("not found")

// ErrPaymentVerification is returned when the external gateway is
// unreachable or reports the session unpaid. The order stays in
// awaiting_payment and the caller may retry.
var ErrPaymentVerification = errors.New("payment verification failed")

// ErrSignatureInvalid is returned for webhook deliveries whose signature
// does not match the shared secret. The delivery is rejected with no state
// change.
var ErrSignatureInvalid = errors.New("webhook signature invalid")

// ValidationError carries field-level detail for malformed order input.
// Nothing is persisted when creation fails validation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	for f, m := range e.Fields {
		return fmt.Sprintf("validation failed: %s: %s", f, m)
	}
	return "validation failed"
}
