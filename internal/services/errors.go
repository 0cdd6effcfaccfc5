package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type ErrorCode string

const (
	CodeUnauthenticated ErrorCode = "unauthenticated"
	CodeRateLimited     ErrorCode = "rate_limited"
	CodeNotFound        ErrorCode = "not_found"
	CodeForbidden       ErrorCode = "forbidden"
	CodeInvalidArgument ErrorCode = "invalid_argument"
)

// Error is returned by every service call that fails for a reason the caller
// can act on. Anything else is an internal failure.
type Error struct {
	Code       ErrorCode
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so that errors.Is(err, ErrNotFound) works for any
// not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrRateLimited     = &Error{Code: CodeRateLimited, Message: "rate limit exceeded"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden       = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
)

func notFound(entity string) error {
	return &Error{Code: CodeNotFound, Message: entity + " not found"}
}

func forbidden(entity string) error {
	return &Error{Code: CodeForbidden, Message: "not authorized to access this " + entity}
}

func invalidArgument(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func rateLimited(retryAfter time.Duration) error {
	return &Error{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("rate limit exceeded, retry in %s", retryAfter.Round(time.Second)),
		RetryAfter: retryAfter,
	}
}

// lookupError turns a repository lookup failure into NotFound or wraps it.
func lookupError(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}

func ErrorCodeOf(err error) (ErrorCode, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code, true
	}
	return "", false
}
