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

// Package names holds the validated identifier types of the schema language.
//
// Each type wraps a string behind an unexported field, so a value can only
// be obtained from a constructor that checks it.
package names

import (
	"regexp"
	"slices"
	"strings"
)

const (
	typeNamePattern       = `^[A-Z][a-z0-9]+([A-Z][a-z0-9]+)*$`
	packagePattern        = `^([a-z][a-z0-9]+(\.[a-z][a-z0-9]*)*)?$`
	namespacePattern      = `^[a-z][a-z]+([A-Z][a-z]+)*$`
	errorNamespacePattern = `^([A-Z][a-z0-9]+)+$`
	parameterNamePattern  = `^[a-z][a-z0-9]*([A-Z0-9][a-z0-9]+)*$`
	endpointNamePattern   = `^[a-z][a-zA-Z0-9]*$`
)

var (
	typeNameRegexp       = regexp.MustCompile(typeNamePattern)
	packageRegexp        = regexp.MustCompile(packagePattern)
	namespaceRegexp      = regexp.MustCompile(namespacePattern)
	errorNamespaceRegexp = regexp.MustCompile(errorNamespacePattern)
	parameterNameRegexp  = regexp.MustCompile(parameterNamePattern)
	endpointNameRegexp   = regexp.MustCompile(endpointNamePattern)
)

// Scalar keywords that name built-in types and are valid type names.
var reservedKeywords = []string{
	"any",
	"bearertoken",
	"binary",
	"boolean",
	"datetime",
	"double",
	"integer",
	"rid",
	"safelong",
	"string",
	"uuid",
}

// Keywords that introduce a container type.
var containerKeywords = []string{
	"list",
	"map",
	"optional",
	"set",
}

// IsPrimitiveKeyword reports whether s is exactly a built-in scalar type
// keyword such as "string" or "datetime".
func IsPrimitiveKeyword(s string) bool {
	_, found := slices.BinarySearch(reservedKeywords, s)
	return found
}

// IsContainerKeyword reports whether s is exactly "list", "map", "optional"
// or "set".
func IsContainerKeyword(s string) bool {
	_, found := slices.BinarySearch(containerKeywords, s)
	return found
}

// shadowsKeyword reports whether s differs from a keyword only in case.
func shadowsKeyword(s string) bool {
	lower := strings.ToLower(s)
	if lower == s {
		return false
	}
	return IsPrimitiveKeyword(lower) || IsContainerKeyword(lower)
}

// A TypeName names a type, error or service. It is UpperCamelCase, or one
// of the built-in scalar keywords.
type TypeName struct {
	name string
}

func NewTypeName(name string) (TypeName, error) {
	if shadowsKeyword(name) {
		return TypeName{}, errReservedIdentifierCase(name)
	}
	if !IsPrimitiveKeyword(name) && !typeNameRegexp.MatchString(name) {
		return TypeName{}, errInvalidTypeName(name)
	}
	return TypeName{name}, nil
}

func MustTypeName(name string) TypeName {
	return must(NewTypeName(name))
}

func (n TypeName) String() string {
	return n.name
}

func (n TypeName) IsZero() bool {
	return n.name == ""
}

// A Package is a dotted lower-case package such as "com.palantir.foo". The
// zero Package means "not set".
type Package struct {
	name string
}

func NewPackage(name string) (Package, error) {
	if !packageRegexp.MatchString(name) {
		return Package{}, errInvalidPackage(name)
	}
	return Package{name}, nil
}

func MustPackage(name string) Package {
	return must(NewPackage(name))
}

func (p Package) String() string {
	return p.name
}

func (p Package) IsZero() bool {
	return p.name == ""
}

// A Namespace is the local alias under which a schema file imports another.
type Namespace struct {
	name string
}

func NewNamespace(name string) (Namespace, error) {
	if !namespaceRegexp.MatchString(name) {
		return Namespace{}, errInvalidNamespace(name)
	}
	return Namespace{name}, nil
}

func MustNamespace(name string) Namespace {
	return must(NewNamespace(name))
}

func (ns Namespace) String() string {
	return ns.name
}

// An ErrorNamespace groups error definitions, such as "Conjure".
type ErrorNamespace struct {
	name string
}

func NewErrorNamespace(name string) (ErrorNamespace, error) {
	if !errorNamespaceRegexp.MatchString(name) {
		return ErrorNamespace{}, errInvalidErrorNamespace(name)
	}
	return ErrorNamespace{name}, nil
}

func MustErrorNamespace(name string) ErrorNamespace {
	return must(NewErrorNamespace(name))
}

func (ns ErrorNamespace) String() string {
	return ns.name
}

// A ParameterName names an endpoint argument.
type ParameterName struct {
	name string
}

func NewParameterName(name string) (ParameterName, error) {
	if !parameterNameRegexp.MatchString(name) {
		return ParameterName{}, errInvalidParameterName(name)
	}
	return ParameterName{name}, nil
}

func MustParameterName(name string) ParameterName {
	return must(NewParameterName(name))
}

func (n ParameterName) String() string {
	return n.name
}

// An EndpointName names a service endpoint.
type EndpointName struct {
	name string
}

func NewEndpointName(name string) (EndpointName, error) {
	if !endpointNameRegexp.MatchString(name) {
		return EndpointName{}, errInvalidEndpointName(name)
	}
	return EndpointName{name}, nil
}

func MustEndpointName(name string) EndpointName {
	return must(NewEndpointName(name))
}

func (n EndpointName) String() string {
	return n.name
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
