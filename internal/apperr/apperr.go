// Package apperr classifies failures surfaced by the content engine so the
// HTTP layer and callers can branch on the kind instead of parsing messages.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store failure")
)

// Error carries the kind plus enough context to render a short reason.
type Error struct {
	Kind    Kind
	Op      string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(" ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrStore:
		return e.Kind == KindStore
	}
	return false
}

// Validation reports a rejected input field.
func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound reports that entity identified by key does not exist.
func NotFound(entity string, key any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", entity, key)}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Store wraps a persistence failure once; already classified errors pass through.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: KindStore, Op: op, Message: "store failure", Err: err}
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}

// Reason returns a short message suitable for API responses.
func Reason(err error) string {
	var classified *Error
	if !errors.As(err, &classified) {
		return "internal error"
	}
	switch classified.Kind {
	case KindStore:
		return "storage unavailable"
	case KindValidation:
		if classified.Field != "" {
			return classified.Field + " " + classified.Message
		}
	}
	return classified.Message
}
