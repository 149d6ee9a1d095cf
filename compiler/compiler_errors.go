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

package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/palantir/conjure-sub003/names"
)

type Error struct {
	code    uint32
	message string
	path    string
	cause   error
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

// Path is the absolute path of the file the error was found in, if known.
func (err *Error) Path() string {
	return err.path
}

func (err *Error) Unwrap() error {
	return err.cause
}

func causeMessage(cause error) string {
	if m, ok := cause.(interface{ Message() string }); ok {
		return m.Message()
	}
	return cause.Error()
}

// Resolution errors.

func errParseFailed(path string, cause error) *Error {
	return &Error{
		code:    4000,
		message: fmt.Sprintf("Error while parsing %s: %s", path, cause),
		path:    path,
		cause:   cause,
	}
}

func errImportNotFound(path, importedFrom string, cause error) *Error {
	msg := fmt.Sprintf("Import not found: %s", path)
	if importedFrom != "" {
		msg += fmt.Sprintf(" (imported from %s)", importedFrom)
	}
	return &Error{
		code:    4001,
		message: msg,
		path:    importedFrom,
		cause:   cause,
	}
}

func errCyclicImport(cycle []string) *Error {
	return &Error{
		code: 4002,
		message: "Cyclic conjure imports are not allowed: " +
			strings.Join(cycle, " -> "),
		path: cycle[0],
	}
}

// errForeignReference reports a foreign reference that does not resolve. The
// lookup error carries the exact message.
func errForeignReference(path string, missingNamespace bool, cause error) *Error {
	code := uint32(4004)
	if missingNamespace {
		code = 4003
	}
	return &Error{
		code:    code,
		message: cause.Error(),
		path:    path,
		cause:   cause,
	}
}

func errUnknownLocalReference(path string, name names.TypeName) *Error {
	return &Error{
		code:    4005,
		message: fmt.Sprintf("Unknown LocalReferenceType: %s", name),
		path:    path,
	}
}

func errMissingPackage(path string, name names.TypeName) *Error {
	return &Error{
		code: 4006,
		message: fmt.Sprintf(
			"Must provide default conjure package or explicit conjure"+
				" package for every object and service: %s", name,
		),
		path: path,
	}
}

func errReadFailed(path string, cause error) *Error {
	return &Error{
		code:    4007,
		message: fmt.Sprintf("Error reading file '%s': %s", path, cause),
		path:    path,
		cause:   cause,
	}
}

// Validation errors.

func errInvalidName(path string, cause error) *Error {
	return &Error{
		code:    5000,
		message: causeMessage(cause),
		path:    path,
		cause:   cause,
	}
}

func errDuplicateEnumValue(path, value string) *Error {
	return &Error{
		code: 5001,
		message: fmt.Sprintf(
			"Cannot declare a EnumTypeDefinition with duplicate enum values: %s",
			value,
		),
		path: path,
	}
}

func errReservedEnumValue(path string, enum names.TypeName) *Error {
	return &Error{
		code: 5002,
		message: fmt.Sprintf(
			"UNKNOWN is a reserved enumeration value and cannot be used in an"+
				" EnumTypeDefinition: %s", enum,
		),
		path: path,
	}
}

func errEnumValueFormat(path, value string) *Error {
	return &Error{
		code: 5003,
		message: fmt.Sprintf(
			"Enumeration values must match format %s: %s",
			enumValuePattern, value,
		),
		path: path,
	}
}

func errDuplicateFieldName(path, kind string, first, second names.FieldName) *Error {
	return &Error{
		code: 5004,
		message: fmt.Sprintf(
			"%s must not contain duplicate field names (modulo case"+
				" normalization): %s vs %s",
			kind, first, second,
		),
		path: path,
	}
}

func errUnionKeyUnderscore(path string, key names.FieldName) *Error {
	return &Error{
		code: 5005,
		message: fmt.Sprintf(
			"Union member key must not end with an underscore: %s", key,
		),
		path: path,
	}
}

func errComplexMapKey(path, keyType, location string) *Error {
	return &Error{
		code: 5006,
		message: fmt.Sprintf(
			"Complex type '%s' not allowed in map key: %s.", keyType, location,
		),
		path: path,
	}
}

func errRecursiveType(path string, cycle []string) *Error {
	return &Error{
		code:    5007,
		message: "Illegal recursive data type: " + strings.Join(cycle, " -> "),
		path:    path,
	}
}

func errNestedOptional(path, location string) *Error {
	return &Error{
		code:    5008,
		message: "Illegal nested optionals found in " + location,
		path:    path,
	}
}

func errDuplicateTypeName(path, name string) *Error {
	return &Error{
		code: 5009,
		message: fmt.Sprintf(
			"Type, error, and service names must be unique across locally"+
				" defined and imported types/errors: %s", name,
		),
		path: path,
	}
}

func errDuplicateService(path string, name string) *Error {
	return &Error{
		code:    5010,
		message: fmt.Sprintf("Service names must be unique: %s", name),
		path:    path,
	}
}

func errInvalidHTTPMethod(path, method, endpoint string) *Error {
	return &Error{
		code: 5011,
		message: fmt.Sprintf(
			"HTTP method must be (%s), but received '%s' in endpoint '%s'.",
			strings.Join(httpMethods, "|"), method, endpoint,
		),
		path: path,
	}
}

func errPathNotAbsolute(path, httpPath string) *Error {
	return &Error{
		code: 5012,
		message: fmt.Sprintf(
			"Conjure paths must be absolute, i.e., start with '/': %s", httpPath,
		),
		path: path,
	}
}

func errPathTrailingSlash(path, httpPath string) *Error {
	return &Error{
		code: 5013,
		message: fmt.Sprintf(
			"Conjure paths must not end with a '/': %s", httpPath,
		),
		path: path,
	}
}

func errPathSegment(path, segment, httpPath string) *Error {
	return &Error{
		code: 5014,
		message: fmt.Sprintf(
			"Segment %s of path %s did not match required segment patterns"+
				" %s or parameter name patterns %s or %s",
			segment, httpPath, pathSegmentPattern,
			pathParamPattern, pathParamRegexPattern,
		),
		path: path,
	}
}

func errDuplicatePathParam(path, param, httpPath string) *Error {
	return &Error{
		code: 5015,
		message: fmt.Sprintf(
			"Path parameter %s appears more than once in path %s",
			param, httpPath,
		),
		path: path,
	}
}

func errPathParamNotInTemplate(path string, params []string, endpoint string) *Error {
	return &Error{
		code: 5016,
		message: fmt.Sprintf(
			"Path parameters defined in endpoint but not present in path"+
				" template: %v (endpoint %s)", params, endpoint,
		),
		path: path,
	}
}

func errPathParamMissing(path string, params []string, endpoint string) *Error {
	return &Error{
		code: 5017,
		message: fmt.Sprintf(
			"Path parameters %v defined path template but not present in"+
				" endpoint: %s", params, endpoint,
		),
		path: path,
	}
}

func errMultipleBodies(path, endpoint string, args []string) *Error {
	return &Error{
		code: 5018,
		message: fmt.Sprintf(
			"Endpoint '%s' cannot have multiple body parameters: %v",
			endpoint, args,
		),
		path: path,
	}
}

func errGetWithBody(path, endpoint string) *Error {
	return &Error{
		code: 5019,
		message: fmt.Sprintf(
			"Endpoint '%s' cannot be a GET and contain a body", endpoint,
		),
		path: path,
	}
}

func errBinaryParam(path string, arg names.ParameterName, endpoint string) *Error {
	return &Error{
		code: 5020,
		message: fmt.Sprintf(
			"Non body parameters cannot contain the 'binary' type. Parameter"+
				" '%s' from endpoint '%s' violates this constraint.",
			arg, endpoint,
		),
		path: path,
	}
}

func errBearerTokenParam(path string, arg names.ParameterName, endpoint string) *Error {
	return &Error{
		code: 5021,
		message: fmt.Sprintf(
			"Path or query parameters of type 'bearertoken' are not allowed as"+
				" this would introduce a security vulnerability: %q endpoint %q",
			arg, endpoint,
		),
		path: path,
	}
}

func errHeaderID(path, id, endpoint string) *Error {
	return &Error{
		code: 5022,
		message: fmt.Sprintf(
			"Header parameter id %s on endpoint %s must match pattern %s",
			id, endpoint, headerIDPattern,
		),
		path: path,
	}
}

func errProtocolHeader(path, id, endpoint string) *Error {
	return &Error{
		code: 5023,
		message: fmt.Sprintf(
			"Header parameter id %s on endpoint %s should not be one of the"+
				" protocol headers %v",
			id, endpoint, protocolHeaders,
		),
		path: path,
	}
}

func errQueryParamID(path, id, endpoint string) *Error {
	return &Error{
		code: 5024,
		message: fmt.Sprintf(
			"Query param id %s on endpoint %s must match one of the following"+
				" patterns: %v",
			id, endpoint, names.FieldNamePatterns(),
		),
		path: path,
	}
}

func errDuplicateEndpointPath(path, methodPath string, endpoints []string) *Error {
	return &Error{
		code: 5025,
		message: fmt.Sprintf(
			"Endpoint %q is defined by multiple endpoints: %v",
			methodPath, endpoints,
		),
		path: path,
	}
}

func errNotAnErrorType(path string, ref string, endpoint string) *Error {
	return &Error{
		code: 5026,
		message: fmt.Sprintf(
			"Unsupported endpoint error type. Endpoint errors must be"+
				" references to a Conjure-defined error type: %s in endpoint '%s'",
			ref, endpoint,
		),
		path: path,
	}
}

func errDuplicateEndpointError(path, name, namespace, endpoint string) *Error {
	return &Error{
		code: 5027,
		message: fmt.Sprintf(
			"Error '%s' with namespace '%s' is declared multiple times in"+
				" endpoint '%s'",
			name, namespace, endpoint,
		),
		path: path,
	}
}

func errDuplicateParamID(path, id, endpoint string) *Error {
	return &Error{
		code: 5028,
		message: fmt.Sprintf(
			"Path parameter with identifier %q is defined multiple times for"+
				" endpoint %s",
			id, endpoint,
		),
		path: path,
	}
}

func errServiceSuffix(path string, name names.TypeName) *Error {
	return &Error{
		code: 5029,
		message: fmt.Sprintf(
			"Service name must not end in %s: %s", reservedServiceSuffix, name,
		),
		path: path,
	}
}

func errPathParamRegex(path, segment, httpPath string) *Error {
	return &Error{
		code: 5030,
		message: fmt.Sprintf(
			"Path parameter %s in path %s specifies regular expression .*, but"+
				" this regular expression is only permitted if the path"+
				" parameter is the last segment",
			segment, httpPath,
		),
		path: path,
	}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var cerr *Error
	ok := errors.As(err, &cerr)
	return cerr, ok
}
