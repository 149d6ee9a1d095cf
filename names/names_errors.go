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

package names

import (
	"fmt"
)

type Error struct {
	code    uint32
	message string
	value   string
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	return fmt.Sprintf("E%d: %s", err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

// Value is the string that was rejected.
func (err *Error) Value() string {
	return err.value
}

func errInvalidTypeName(name string) *Error {
	return &Error{
		code: 2000,
		message: fmt.Sprintf(
			"TypeNames must be a primitive type %v or match pattern %s: %s",
			reservedKeywords, typeNamePattern, name,
		),
		value: name,
	}
}

func errReservedIdentifierCase(name string) *Error {
	return &Error{
		code: 2001,
		message: fmt.Sprintf(
			"Invalid use of a built-in identifier (please check case): %s",
			name,
		),
		value: name,
	}
}

func errInvalidFieldName(name string) *Error {
	return &Error{
		code: 2002,
		message: fmt.Sprintf(
			"FieldName %q must follow one of the following patterns: %v",
			name, FieldNamePatterns(),
		),
		value: name,
	}
}

func errInvalidPackage(name string) *Error {
	return &Error{
		code: 2003,
		message: fmt.Sprintf(
			"Conjure package names must match pattern %s: %s",
			packagePattern, name,
		),
		value: name,
	}
}

func errInvalidNamespace(name string) *Error {
	return &Error{
		code: 2004,
		message: fmt.Sprintf(
			"Namespace for imported types must match pattern %s: %s",
			namespacePattern, name,
		),
		value: name,
	}
}

func errInvalidErrorNamespace(name string) *Error {
	return &Error{
		code: 2005,
		message: fmt.Sprintf(
			"Namespace for errors must match pattern %s: %s",
			errorNamespacePattern, name,
		),
		value: name,
	}
}

func errInvalidErrorCode(code string) *Error {
	return &Error{
		code: 2006,
		message: fmt.Sprintf(
			"Error code must be one of %v: %s", errorCodeNames[1:], code,
		),
		value: code,
	}
}

func errInvalidParameterName(name string) *Error {
	return &Error{
		code: 2007,
		message: fmt.Sprintf(
			"Parameter names in endpoint paths and service definitions must match pattern %s: %s",
			parameterNamePattern, name,
		),
		value: name,
	}
}

func errInvalidEndpointName(name string) *Error {
	return &Error{
		code: 2008,
		message: fmt.Sprintf(
			"Endpoint names must match pattern %s: %s",
			endpointNamePattern, name,
		),
		value: name,
	}
}
