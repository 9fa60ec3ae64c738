package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies errors caused by the caller rather than by the system
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindAccessDenied     ErrorKind = "access_denied"
	KindRateLimited      ErrorKind = "rate_limited"
	KindNotAuthenticated ErrorKind = "not_authenticated"
)

// SecurityError is returned when a request is rejected because of its input or its caller.
// Its message is safe to show to the client.
type SecurityError struct {
	Kind    ErrorKind
	Message string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func invalidInput(format string, args ...any) error {
	return &SecurityError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notAuthenticated(message string) error {
	return &SecurityError{Kind: KindNotAuthenticated, Message: message}
}

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTokenNotFound      = errors.New("refresh token not found")
	// ErrGenerationUnavailable is returned when text generation is not configured
	ErrGenerationUnavailable = errors.New("text generation is not available")
	// ErrGenerationFailed is returned when every configured model failed to answer
	ErrGenerationFailed = errors.New("text generation failed")
	// ErrInvalidModelOutput is returned when the model answers with an unexpected shape
	ErrInvalidModelOutput = errors.New("model returned an invalid response")
)
