// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is how many call frames are captured beyond NewError itself.
const stackDepth = 32

// Error is the structured error type used throughout this codebase in
// place of a bare error string: it carries a numeric Code (see the
// constants in error_code.go), a human Message, an optional InnerError
// being wrapped, and the call stack captured at construction time.
type Error struct {
	Code       int
	Message    string
	InnerError error
	Stack      []runtime.Frame
}

// NewError creates an empty *Error with its stack captured at the
// caller's site.
func NewError() *Error {
	return &Error{Stack: captureStack()}
}

// WithCode sets the error code and returns the receiver for chaining.
func (e *Error) WithCode(code int) *Error {
	e.Code = code
	return e
}

// WithMessage sets the message and returns the receiver for chaining.
func (e *Error) WithMessage(message string) *Error {
	e.Message = message
	return e
}

// WithMessagef formats the message and returns the receiver for chaining.
func (e *Error) WithMessagef(format string, args ...interface{}) *Error {
	e.Message = fmt.Sprintf(format, args...)
	return e
}

// WithError sets the wrapped inner error and returns the receiver for
// chaining. Passing nil clears it.
func (e *Error) WithError(err error) *Error {
	e.InnerError = err
	return e
}

// Error implements the error interface. The inner-error segment is
// omitted entirely when InnerError is nil, never rendered as "error <nil>".
func (e *Error) Error() string {
	var b strings.Builder
	if e.InnerError != nil {
		fmt.Fprintf(&b, "error %v, ", e.InnerError)
	}
	fmt.Fprintf(&b, "code %d, message %s, stack %s", e.Code, e.Message, e.GetStackString())
	return b.String()
}

// GetStackString renders the captured stack as one "file:line funcName"
// line per frame, with the function name's package path stripped.
func (e *Error) GetStackString() string {
	if len(e.Stack) == 0 {
		return ""
	}
	var b strings.Builder
	for _, frame := range e.Stack {
		fmt.Fprintf(&b, "%s:%d %s\n", baseFile(frame.File), frame.Line, shortFuncName(frame.Function))
	}
	return b.String()
}

func captureStack() []runtime.Frame {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(3, pcs) // skip Callers, captureStack, NewError/Wrap*
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])
	out := make([]runtime.Frame, 0, n)
	for {
		frame, more := frames.Next()
		out = append(out, frame)
		if !more {
			break
		}
	}
	return out
}

func baseFile(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// shortFuncName strips the package path from a fully-qualified function
// name (e.g. "github.com/amd-aig/workflow-engine/pkg/errors.NewError"
// becomes "errors.NewError"), leaving no "/" characters behind.
func shortFuncName(full string) string {
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		return full[idx+1:]
	}
	return full
}

// WrapError builds an *Error carrying the given inner error, message and
// code, with the stack captured at the caller's site.
func WrapError(err error, message string, code int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		InnerError: err,
		Stack:      captureStack(),
	}
}

// WrapMessage builds an *Error carrying only a message and code (no inner
// error), with the stack captured at the caller's site.
func WrapMessage(message string, code int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}
}
