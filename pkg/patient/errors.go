package patient

import "errors"

// ErrPatientNotFound covers every lookup of an identifier the store does
// not know, including deletes of already-deleted rows.
var ErrPatientNotFound = errors.New("patient not found")

// ValidationError wraps a reason a request body was rejected.
type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func newValidationError(reason error) error {
	return ValidationError{reason: reason}
}
