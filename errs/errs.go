// Package errs defines the error kinds reported by the codec. Every public
// entry point fails with an error that matches exactly one of the kinds below
// through errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// InvalidType indicates a malformed type string or an unresolvable relative type.
	InvalidType = errors.New("invalid type")
	// UnsupportedType indicates a type the generator does not handle (intersection,
	// void/never, union reaching encode generation).
	UnsupportedType = errors.New("unsupported type")
	// ResourceRead indicates the underlying source could not be read.
	ResourceRead = errors.New("resource read")
	// InvalidResource indicates the input bytes are not well formed JSON.
	InvalidResource = errors.New("invalid resource")
	// UnexpectedValue indicates a value that does not match the declared shape.
	UnexpectedValue = errors.New("unexpected value")
	// CircularReference indicates a record graph cycle reached during encode generation.
	CircularReference = errors.New("circular reference")
	// Visibility indicates a field that is not publicly accessible.
	Visibility = errors.New("visibility")
	// InvalidArgument indicates a generic arity mismatch or a malformed hook.
	InvalidArgument = errors.New("invalid argument")
)

var byName = map[string]error{
	"InvalidType":       InvalidType,
	"UnsupportedType":   UnsupportedType,
	"ResourceRead":      ResourceRead,
	"InvalidResource":   InvalidResource,
	"UnexpectedValue":   UnexpectedValue,
	"CircularReference": CircularReference,
	"Visibility":        Visibility,
	"InvalidArgument":   InvalidArgument,
}

// Error carries an error kind, a message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// New creates an error of the supplied kind.
func New(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the supplied kind with a cause. If cause already
// matches kind it is returned as is.
func Wrap(kind error, cause error, format string, args ...interface{}) error {
	if cause != nil && errors.Is(cause, kind) {
		return cause
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Lookup returns the kind registered under name ("UnexpectedValue").
func Lookup(name string) (error, bool) {
	kind, ok := byName[name]
	return kind, ok
}

// Name returns the name of the kind matched by err, or "" when err matches none.
func Name(err error) string {
	for name, kind := range byName {
		if errors.Is(err, kind) {
			return name
		}
	}
	return ""
}
