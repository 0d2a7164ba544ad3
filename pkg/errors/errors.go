package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Tokens
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrTokenExpired         = fmt.Errorf("token has expired")
	ErrTokenNotYetValid     = fmt.Errorf("token is not valid yet")
	ErrSessionRevoked       = fmt.Errorf("session is no longer active")

	// Authorization
	ErrEmptyAuthHeader   = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader = fmt.Errorf("authorization header has an invalid format")
	ErrUnauthorized      = fmt.Errorf("unauthorized")
	ErrForbidden         = fmt.Errorf("access denied")

	// Common
	ErrNotFound   = fmt.Errorf("record not found")
	ErrBadRequest = fmt.Errorf("bad request")
)

// Kind tags an error with the class of failure it represents.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func kindFromStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	default:
		return KindInternal
	}
}

// HttpError carries a user-facing message and, separately, the internal cause
// and context that only go to the logs.
type HttpError struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func (e *HttpError) WithDetails(details interface{}) *HttpError {
	e.Details = details
	return e
}

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{
		Kind:    kindFromStatus(code),
		Code:    code,
		Message: message,
		Err:     err,
		Context: context,
	}
}

func New(kind Kind, message string, err error) *HttpError {
	return &HttpError{Kind: kind, Code: kind.Status(), Message: message, Err: err}
}

func NewValidationError(message string, details interface{}) *HttpError {
	return New(KindValidation, message, nil).WithDetails(details)
}

func NewBadRequestError(message string) *HttpError {
	return New(KindValidation, message, ErrBadRequest)
}

func NewConflictError(message string, err error) *HttpError {
	return New(KindConflict, message, err)
}

func NewNotFoundError(message string) *HttpError {
	return New(KindNotFound, message, ErrNotFound)
}

func NewUnauthorizedError(message string) *HttpError {
	return New(KindUnauthorized, message, ErrUnauthorized)
}

func NewTooManyRequestsError(message string) *HttpError {
	return New(KindTooManyRequests, message, nil)
}

func NewInternalError(message string, err error) *HttpError {
	return New(KindInternal, message, err)
}

// KindOf reports the Kind of err, looking through wrapping.
// Untagged errors are internal unless they wrap one of the sentinels above.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrBadRequest):
		return KindValidation
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid),
		errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrSessionRevoked),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader):
		return KindUnauthorized
	}
	return KindInternal
}
