// Package errors defines the sentinel errors shared by the CLI and the query
// service, plus AppError for attaching a user-facing message and status.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUsage        = errors.New("usage error")
	ErrCorpusRead   = errors.New("corpus read error")
	ErrEmptyCorpus  = errors.New("corpus is empty")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
)

// Exit codes returned by the command-line tools.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Usagef reports a wrong command-line invocation.
func Usagef(format string, args ...any) *AppError {
	return Newf(ErrUsage, http.StatusBadRequest, format, args...)
}

// CorpusReadf reports a corpus document that could not be read or decoded.
func CorpusReadf(format string, args ...any) *AppError {
	return Newf(ErrCorpusRead, http.StatusInternalServerError, format, args...)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUsage):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyCorpus):
		return http.StatusNotFound
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ExitCode maps err to the process exit status of a command-line tool.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitError
	}
}
