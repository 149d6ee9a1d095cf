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

package syntax

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palantir/conjure-sub003/parsec"
)

type Error struct {
	code    uint32
	message string
	line    int
	column  int
	cause   error
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	if err.line == 0 {
		return fmt.Sprintf("E%d: %s", err.code, err.message)
	}
	return fmt.Sprintf(
		"E%d: %s (line %d, column %d)",
		err.code, err.message, err.line, err.column,
	)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// Line is the 1-based source line, or 0 if the error has no position.
func (err *Error) Line() int {
	return err.line
}

func (err *Error) Column() int {
	return err.column
}

func (err *Error) Unwrap() error {
	return err.cause
}

func errAt(node *yaml.Node, code uint32, message string) *Error {
	err := &Error{code: code, message: message}
	if node != nil {
		err.line = node.Line
		err.column = node.Column
	}
	return err
}

// yaml.v3 reports syntax errors as "yaml: line N: message".
var yamlLineRegexp = regexp.MustCompile(`^yaml: line (\d+): `)

func errInvalidYAML(cause error) *Error {
	err := &Error{code: 3000, cause: cause}
	msg := cause.Error()
	if m := yamlLineRegexp.FindStringSubmatch(msg); m != nil {
		fmt.Sscan(m[1], &err.line)
		msg = msg[len(m[0]):]
	}
	err.message = "Invalid YAML: " + strings.TrimPrefix(msg, "yaml: ")
	return err
}

func errExpectedMapping(node *yaml.Node, what string) *Error {
	return errAt(node, 3001, fmt.Sprintf("Expected a mapping for %s", what))
}

func errExpectedScalar(node *yaml.Node, what string) *Error {
	return errAt(node, 3002, fmt.Sprintf("Expected a string for %s", what))
}

func errExpectedSequence(node *yaml.Node, what string) *Error {
	return errAt(node, 3003, fmt.Sprintf("Property '%s' must contain a list.", what))
}

func errDuplicateKey(node *yaml.Node, key string) *Error {
	return errAt(node, 3004, fmt.Sprintf("Duplicate field '%s'", key))
}

func errKeyNotKebabCase(node *yaml.Node, key string) *Error {
	return errAt(node, 3005, fmt.Sprintf(
		"Field '%s' must be kebab-case, matching %s", key, kebabKeyPattern,
	))
}

func errUnknownKey(node *yaml.Node, key, where string) *Error {
	return errAt(node, 3006, fmt.Sprintf("Unknown field '%s' in %s", key, where))
}

func errMissingKey(node *yaml.Node, key, where string) *Error {
	return errAt(node, 3007, fmt.Sprintf("Missing required field '%s' in %s", key, where))
}

func errUnrecognizedDefinition(node *yaml.Node, name string) *Error {
	return errAt(node, 3008, fmt.Sprintf(
		"Unrecognized definition, types must have either fields, values or an alias defined: %s",
		name,
	))
}

func errInvalidTypeExpr(node *yaml.Node, cause error) *Error {
	msg := causeMessage(cause)
	var perr *parsec.Error
	if errors.As(cause, &perr) {
		msg = fmt.Sprintf("%s (at character %d)", msg, perr.Offset())
	}
	err := errAt(node, 3009, fmt.Sprintf("Invalid type %q: %s", node.Value, msg))
	err.cause = cause
	return err
}

func errInvalidName(node *yaml.Node, cause error) *Error {
	err := errAt(node, 3010, causeMessage(cause))
	err.cause = cause
	return err
}

func errInvalidRequestLine(node *yaml.Node) *Error {
	return errAt(node, 3011, fmt.Sprintf(
		"Request line must be of the form: [METHOD] [PATH], instead was '%s'",
		node.Value,
	))
}

func errInvalidAuth(node *yaml.Node, cause error) *Error {
	err := errAt(node, 3012, fmt.Sprintf("Invalid auth type %q: %s", node.Value, causeMessage(cause)))
	err.cause = cause
	return err
}

var errCookieNameMissing = errors.New("Cookie authorization type must include a cookie name")

func errInvalidParamType(node *yaml.Node) *Error {
	return errAt(node, 3013, fmt.Sprintf(
		"Unknown param-type '%s', expected one of auto, path, query, header, body",
		node.Value,
	))
}

func errInvalidBaseType(node *yaml.Node, name string) *Error {
	return errAt(node, 3014, fmt.Sprintf(
		"base-type of external import %s must be a built-in type, got '%s'",
		name, node.Value,
	))
}

func errConflictingDefaultPackage(node *yaml.Node) *Error {
	return errAt(node, 3015,
		"default-package is declared under both 'types' and 'types.definitions'")
}

func errContainerWithoutItem(keyword string) *Error {
	return &Error{
		code:    3016,
		message: fmt.Sprintf("Type '%s' requires type parameters, such as %s<string>", keyword, keyword),
	}
}

func errMisplacedError(node *yaml.Node, name string) *Error {
	return errAt(node, 3017, fmt.Sprintf(
		"Error definition %s must be declared under 'errors', not 'objects'", name,
	))
}

func causeMessage(err error) string {
	if m, ok := err.(interface{ Message() string }); ok {
		return m.Message()
	}
	return err.Error()
}
