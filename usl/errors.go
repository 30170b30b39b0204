package usl

import (
	"errors"
	"fmt"
)

// Kind classifies an Error
type Kind int

const (
	// KindClient is a local failure: a violated precondition or a bad HTTP status
	KindClient Kind = iota
	// KindAPI means the envelope reported success:false
	KindAPI
	// KindMalformed means the response could not be interpreted
	KindMalformed
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindMalformed:
		return "malformed"
	default:
		return "client"
	}
}

// Sentinels for errors.Is matching on Kind
var (
	// ErrClient matches any KindClient error
	ErrClient = errors.New("usl client error")
	// ErrAPI matches any KindAPI error
	ErrAPI = errors.New("usl api error")
	// ErrMalformed matches any KindMalformed error
	ErrMalformed = errors.New("usl malformed response")
)

// Error is the single error type returned by the client for failures the
// caller may want to branch on.
type Error struct {
	Kind Kind

	// KindAPI
	ErrorType    string
	ErrorMessage string

	// KindMalformed and KindClient
	Reason string

	// Set when the failure came from an HTTP response
	StatusCode int
	Payload    []byte
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("usl: %s: %s", e.ErrorType, e.ErrorMessage)
	case KindMalformed:
		return fmt.Sprintf("usl: malformed response: %s", e.Reason)
	default:
		if e.StatusCode != 0 {
			return fmt.Sprintf("usl: %s (status %d)", e.Reason, e.StatusCode)
		}
		return "usl: " + e.Reason
	}
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	switch target {
	case ErrClient:
		return e.Kind == KindClient
	case ErrAPI:
		return e.Kind == KindAPI
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// IsUnauthorized checks if the error carries an authentication failure status
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// AsError returns the *Error in err's chain, if any
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err (or any wrapped error) is an *Error of kind k
func IsKind(err error, k Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}

func clientError(format string, args ...any) *Error {
	return &Error{Kind: KindClient, Reason: fmt.Sprintf(format, args...)}
}

func statusError(reason string, status int, payload []byte) *Error {
	return &Error{Kind: KindClient, Reason: reason, StatusCode: status, Payload: payload}
}

func malformedError(reason string, payload []byte) *Error {
	return &Error{Kind: KindMalformed, Reason: reason, Payload: payload}
}

func apiError(errorType, errorMessage string) *Error {
	return &Error{Kind: KindAPI, ErrorType: errorType, ErrorMessage: errorMessage}
}
