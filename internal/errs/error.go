/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package errs

import (
	"fmt"
	"runtime"
)

// Error is a CodeError-tagged error carrying an optional parent and the
// caller's file/line, the way a startup failure is reported before the
// process exits.
type Error struct {
	code   CodeError
	msg    string
	parent error
	file   string
	line   int
}

// New builds an Error tagged with code, capturing the immediate caller.
func New(code CodeError, msg string, parent error) *Error {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}

	return &Error{
		code:   code,
		msg:    msg,
		parent: parent,
		file:   file,
		line:   line,
	}
}

// Code returns the CodeError this error is tagged with.
func (e *Error) Code() CodeError {
	return e.code
}

// Unwrap exposes the parent error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.parent
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s (%s:%d): %s", e.code, e.msg, e.file, e.line, e.parent.Error())
	}
	return fmt.Sprintf("%s: %s (%s:%d)", e.code, e.msg, e.file, e.line)
}

// Invariant panics with an ErrInvariant-tagged Error. Used exclusively for
// driver invariant violations (spec class 3): a completion referencing an
// unallocated slot, or a pool that the admission gate should have kept from
// ever running dry.
func Invariant(msg string, parent error) {
	panic(New(ErrInvariant, msg, parent))
}
