// Package errcode carries the integer error codes spoken across the native
// core boundary and maps them onto Go errors for the rest of the bridge.
package errcode

import (
	"errors"
	"fmt"
)

// Code is a numeric error code shared with the native core.
type Code int

const (
	OK Code = iota
	Unknown
	InvalidArgument
	NotFound
	AlreadyExists
	CoreUnavailable
	ModelNotLoaded
	Canceled
	Timeout
	Internal
)

var names = map[Code]string{
	OK:              "ok",
	Unknown:         "unknown",
	InvalidArgument: "invalid_argument",
	NotFound:        "not_found",
	AlreadyExists:   "already_exists",
	CoreUnavailable: "core_unavailable",
	ModelNotLoaded:  "model_not_loaded",
	Canceled:        "canceled",
	Timeout:         "timeout",
	Internal:        "internal",
}

// Name returns the canonical name for a code. Unrecognised codes report
// "unknown" rather than failing.
func Name(c Code) string {
	if n, ok := names[c]; ok {
		return n
	}
	return names[Unknown]
}

func (c Code) String() string { return Name(c) }

// Error pairs a code with a human-readable message.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("errcode: %s", Name(e.Code))
	}
	return fmt.Sprintf("errcode: %s: %s", Name(e.Code), e.Msg)
}

// Err builds an error carrying the given code.
func Err(c Code, msg string) error {
	return &Error{Code: c, Msg: msg}
}

// Errf builds an error carrying the given code with a formatted message.
func Errf(c Code, format string, args ...any) error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, args...)}
}

// FromErr extracts the code from an error chain. A nil error is OK; an error
// that carries no code is Unknown.
func FromErr(err error) Code {
	if err == nil {
		return OK
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return Unknown
}
