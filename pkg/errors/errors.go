// Package errors defines the coded errors framecraft returns from its
// libraries.
//
// Every [Error] carries a [Code], and every code belongs to a [Kind]. The
// code is what callers match on and what the HTTP API reports; the kind is
// the coarse grouping used to pick an exit path (a 404, a retry, a
// rejected document).
//
// Three codes are specific to layout:
//
//	INVALID_SOURCE      an image's native size is unavailable; its fit waits
//	UNSUPPORTED_FORMAT  a template document matches no known layout; the
//	                    current arrangement is kept
//	STALE_COMPLETION    an asynchronous size lookup finished after its
//	                    frame or background was replaced; the result is
//	                    dropped
//
// Usage:
//
//	err := errors.New(errors.ErrCodeFrameNotFound, "frame %s not found", id)
//	if errors.IsNotFound(err) { ... }
//
//	return errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidSource     Code = "INVALID_SOURCE"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ErrCodeStaleCompletion   Code = "STALE_COMPLETION"

	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidID    Code = "INVALID_ID"
	ErrCodeInvalidFit   Code = "INVALID_FIT"
	ErrCodeInvalidURL   Code = "INVALID_URL"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeFrameNotFound    Code = "FRAME_NOT_FOUND"
	ErrCodeImageNotFound    Code = "IMAGE_NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"

	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by how a caller should react to them.
type Kind int

const (
	KindInternal    Kind = iota // unknown codes land here
	KindInvalid                 // the caller sent something unusable
	KindFormat                  // a document could not be understood
	KindNotFound                // the referenced object does not exist
	KindNetwork                 // a remote fetch failed
	KindTimeout                 // a remote fetch took too long
	KindUnsupported             // the operation is switched off
	KindStale                   // a result arrived too late to apply
)

var kinds = map[Code]Kind{
	ErrCodeInvalidSource:     KindInvalid,
	ErrCodeInvalidInput:      KindInvalid,
	ErrCodeInvalidID:         KindInvalid,
	ErrCodeInvalidFit:        KindInvalid,
	ErrCodeInvalidURL:        KindInvalid,
	ErrCodeUnsupportedFormat: KindFormat,
	ErrCodeNotFound:          KindNotFound,
	ErrCodeFrameNotFound:     KindNotFound,
	ErrCodeImageNotFound:     KindNotFound,
	ErrCodeTemplateNotFound:  KindNotFound,
	ErrCodeNetwork:           KindNetwork,
	ErrCodeTimeout:           KindTimeout,
	ErrCodeUnsupported:       KindUnsupported,
	ErrCodeStaleCompletion:   KindStale,
}

// Kind returns the group c belongs to.
func (c Code) Kind() Kind { return kinds[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether code appears anywhere in err's chain.
func Is(err error, code Code) bool {
	found := false
	walk(err, func(e *Error) bool {
		found = e.Code == code
		return !found
	})
	return found
}

// GetCode returns the outermost code in err's chain, or "" if there is
// none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of err's outermost code. Uncoded errors are
// KindInternal.
func KindOf(err error) Kind { return GetCode(err).Kind() }

// IsNotFound reports whether err's outermost code is a not-found code.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// UserMessage returns the message of the outermost coded error without its
// code, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// walk visits every *Error in err's chain, outermost first, until fn
// returns false.
func walk(err error, fn func(*Error) bool) {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) || !fn(e) {
			return
		}
		err = e.Cause
	}
}
