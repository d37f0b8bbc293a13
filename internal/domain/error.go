package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidTransition  = errors.New("invalid job status transition")
	ErrNotReady           = errors.New("conversion not completed yet")
	ErrRateLimited        = errors.New("upload rate limit exceeded")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

// Validation reason codes surfaced at submission time.
const (
	ReasonNoFilename   = "no_filename"
	ReasonBadExtension = "bad_extension"
	ReasonTooLarge     = "too_large"
	ReasonBadSignature = "bad_signature"
)

// ValidationError rejects an upload before any job record is created.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

// AsValidationError unwraps err into a *ValidationError when it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
