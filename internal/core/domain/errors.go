package domain

import "errors"

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("password or email incorrect")
	ErrUnauthenticated    = errors.New("not authorized")
	ErrUserNotFound       = errors.New("user not found")
)

// ErrorKind is the machine-readable class of a failure, used at the HTTP
// boundary to pick a status code and message.
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION_ERROR"
	KindEmailTaken         ErrorKind = "EMAIL_TAKEN"
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindUnauthenticated    ErrorKind = "UNAUTHENTICATED"
	KindInternal           ErrorKind = "INTERNAL_ERROR"
)

// ValidationError reports malformed client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError wraps msg as a VALIDATION_ERROR.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// KindOf classifies err. Anything not recognised is INTERNAL_ERROR,
// including ErrUserNotFound, which flows never surface directly.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrEmailTaken):
		return KindEmailTaken
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return KindInternal
	}
}
