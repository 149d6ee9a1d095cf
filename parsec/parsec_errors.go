// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package parsec

import (
	"errors"
	"fmt"
)

const contextLength = 100

type Error struct {
	code    uint32
	message string
	offset  int
	line    int
	context string
	soft    bool
	cause   error
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf(
		"E%d: %s\nat or before character %d\non or before line %d\n%s",
		err.code, err.message, err.offset, err.line, err.context,
	)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// Offset is the character offset at which parsing failed.
func (err *Error) Offset() int {
	return err.offset
}

func (err *Error) Line() int {
	return err.line
}

// Context is the input text following the failure position.
func (err *Error) Context() string {
	return err.context
}

// Soft reports whether the failure means "no match" rather than
// "malformed input".
func (err *Error) Soft() bool {
	return err.soft
}

func (err *Error) Unwrap() error {
	return err.cause
}

func newError(c *Cursor, offset int, code uint32, message string) *Error {
	return &Error{
		code:    code,
		message: message,
		offset:  offset,
		line:    c.lineAt(offset),
		context: c.textAt(offset, contextLength),
	}
}

func asError(c *Cursor, offset int, err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return errRejected(c, offset, err)
}

func harden(err *Error) *Error {
	if !err.soft {
		return err
	}
	hard := *err
	hard.soft = false
	return &hard
}

func errNoMatch(c *Cursor, offset int, expected string) *Error {
	err := newError(c, offset, 1000, fmt.Sprintf("Expected %s", expected))
	err.soft = true
	return err
}

func errTrailingInput(c *Cursor, offset int) *Error {
	return newError(c, offset, 1001, fmt.Sprintf(
		"Unexpected input after end of expression: %q",
		c.textAt(offset, contextLength),
	))
}

func errRejected(c *Cursor, offset int, cause error) *Error {
	msg := cause.Error()
	if m, ok := cause.(interface{ Message() string }); ok {
		msg = m.Message()
	}
	err := newError(c, offset, 1002, msg)
	err.cause = cause
	return err
}

func errMissingValue(c *Cursor, offset int, key any) *Error {
	return newError(c, offset, 1003, fmt.Sprintf(
		"Found key '%v' without associated value.", key,
	))
}

func errDuplicateKey(c *Cursor, offset int, key any) *Error {
	return newError(c, offset, 1004, fmt.Sprintf("Duplicate key '%v'.", key))
}

func errUnterminatedString(c *Cursor, offset int) *Error {
	return newError(c, offset, 1005,
		"Reached end of file while processing quoted string.")
}

func errUnknownDirective(c *Cursor, offset int, directive string) *Error {
	return newError(c, offset, 1006, fmt.Sprintf(
		"Unknown directive '%s'.", directive,
	))
}

func errInvalidEscape(c *Cursor, offset int, r rune) *Error {
	return newError(c, offset, 1007, fmt.Sprintf(
		"Invalid escape sequence '\\%c' in quoted string.", r,
	))
}
