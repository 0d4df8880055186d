package scrape

import (
	"errors"
	"fmt"
)

// ErrKind discriminates scraping failures so callers can surface actionable
// guidance (reduce volume on timeout, check access on restriction, etc.).
type ErrKind string

const (
	KindTimeout    ErrKind = "timeout"
	KindRestricted ErrKind = "restricted"
	KindNotFound   ErrKind = "not_found"
	KindProvider   ErrKind = "provider"
)

// Error is a scraping failure scoped to one platform or provider job.
type Error struct {
	Kind    ErrKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the error kind, or KindProvider for untyped errors.
func KindOf(err error) ErrKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindProvider
}

// IsTimeout reports whether the error is a scraping timeout.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}
