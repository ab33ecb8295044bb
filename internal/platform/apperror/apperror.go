package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error so callers can decide how to react: correct
// input, re-fetch availability, retry later, or abort.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindStateTransition
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStateTransition:
		return "state_transition"
	case KindTransient:
		return "transient"
	}
	return "unknown"
}

// Error is a classified application error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func StateTransition(format string, args ...interface{}) error {
	return &Error{Kind: KindStateTransition, Msg: fmt.Sprintf(format, args...)}
}

func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// IsConflict is a convenience matcher for the contended claim path.
func IsConflict(err error) bool { return Is(err, KindConflict) }

// IsNotFound reports whether err represents a missing entity.
func IsNotFound(err error) bool { return Is(err, KindNotFound) }

// ToHTTP converts a classified error to an echo HTTPError. Unclassified
// errors become 500s.
func ToHTTP(err error) error {
	var ae *Error
	if !errors.As(err, &ae) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	status := http.StatusInternalServerError
	switch ae.Kind {
	case KindValidation, KindStateTransition:
		status = http.StatusBadRequest
	case KindNotFound:
		status = http.StatusNotFound
	case KindConflict:
		status = http.StatusConflict
	case KindTransient:
		status = http.StatusServiceUnavailable
	}
	return echo.NewHTTPError(status, map[string]string{
		"error": ae.Msg,
		"kind":  ae.Kind.String(),
	})
}
