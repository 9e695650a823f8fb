package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for the HTTP boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindInvalid
	KindConflict
)

// Error is a service failure with a client-presentable message.
type Error struct {
	kind ErrorKind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Kind() ErrorKind {
	return e.kind
}

func notFound(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) error {
	return &Error{kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...interface{}) error {
	return &Error{kind: KindInvalid, msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err; plain errors map to KindInternal.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind()
	}
	return KindInternal
}
