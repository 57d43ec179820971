package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure for the HTTP layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindBadRequest
	KindConflict
	KindForbidden
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to a response status.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a typed business failure with a client-safe message.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on kind and message so wrapped sentinels compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func NotFound(msg string) *AppError     { return &AppError{Kind: KindNotFound, Message: msg} }
func BadRequest(msg string) *AppError   { return &AppError{Kind: KindBadRequest, Message: msg} }
func Conflict(msg string) *AppError     { return &AppError{Kind: KindConflict, Message: msg} }
func Forbidden(msg string) *AppError    { return &AppError{Kind: KindForbidden, Message: msg} }
func Unauthorized(msg string) *AppError { return &AppError{Kind: KindUnauthorized, Message: msg} }

// Internal wraps a storage or infrastructure failure.
func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// PublicMessage is the client-safe message of err.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

// KindOf returns the kind of the first AppError in err's chain, KindInternal otherwise.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound       = NotFound("user not found")
	ErrChallengeNotFound  = NotFound("challenge not found")
	ErrTitleNotFound      = NotFound("title not found")
	ErrTrophyNotFound     = NotFound("trophy not found")
	ErrChallengeCompleted = BadRequest("challenge already completed")
	ErrRequirementsNotMet = BadRequest("challenge requirements not met")
	ErrInsufficientCoins  = BadRequest("insufficient coins")
	ErrTitleOwned         = BadRequest("title already owned")
	ErrTitleNotOwned      = BadRequest("title not owned")
	ErrTitlePriceMismatch = BadRequest("title price mismatch")
	ErrDuplicateTitle     = BadRequest("title name already exists")

	ErrOfficialTrophyForbidden = Forbidden("only admins can create official trophies")
)
