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

// An ErrorCode is the category of a declared error.
type ErrorCode uint8

const (
	PermissionDenied ErrorCode = iota + 1
	InvalidArgument
	NotFound
	Conflict
	RequestEntityTooLarge
	FailedPrecondition
	Internal
	Timeout
	CustomClient
	CustomServer
)

var errorCodeNames = [...]string{
	PermissionDenied:      "PERMISSION_DENIED",
	InvalidArgument:       "INVALID_ARGUMENT",
	NotFound:              "NOT_FOUND",
	Conflict:              "CONFLICT",
	RequestEntityTooLarge: "REQUEST_ENTITY_TOO_LARGE",
	FailedPrecondition:    "FAILED_PRECONDITION",
	Internal:              "INTERNAL",
	Timeout:               "TIMEOUT",
	CustomClient:          "CUSTOM_CLIENT",
	CustomServer:          "CUSTOM_SERVER",
}

func ParseErrorCode(s string) (ErrorCode, error) {
	for code, name := range errorCodeNames {
		if code != 0 && name == s {
			return ErrorCode(code), nil
		}
	}
	return 0, errInvalidErrorCode(s)
}

func MustErrorCode(s string) ErrorCode {
	return must(ParseErrorCode(s))
}

func (c ErrorCode) String() string {
	if c == 0 || int(c) >= len(errorCodeNames) {
		return "UNKNOWN"
	}
	return errorCodeNames[c]
}
