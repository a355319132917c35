package port

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors used across ports.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("already exists")
	ErrNotAuthenticated     = errors.New("usuário não autenticado")
	ErrInvalidCredentials   = errors.New("email ou senha inválidos")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrSessionNotFound      = errors.New("session not found")
	ErrForbidden            = errors.New("forbidden")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// AuthError reports bad credentials or an unauthenticated mutation attempt.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return e.Err.Error() }

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError wraps err as an AuthError.
func NewAuthError(err error) *AuthError {
	return &AuthError{Err: err}
}

// RemoteError is a backend failure. Message is shown to the user verbatim.
type RemoteError struct {
	Op      string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Message
	}
	return e.Op + ": " + e.Message + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError wraps a backend failure with the message the user sees.
func NewRemoteError(op, message string, err error) *RemoteError {
	return &RemoteError{Op: op, Message: message, Err: err}
}

// ValidationError carries client-side form-field errors keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records the first message for a field.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Err returns nil when no field failed, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage extracts the message a page shows for err, or fallback when err
// carries nothing meant for the user.
func UserMessage(err error, fallback string) string {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	var auth *AuthError
	if errors.As(err, &auth) {
		return auth.Error()
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, k := range sortedKeys(verr.Fields) {
			return verr.Fields[k]
		}
	}
	return fallback
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
