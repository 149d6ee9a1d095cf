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

package schema

import (
	"github.com/palantir/conjure-sub003/names"
)

type ParamType uint8

const (
	ParamBody ParamType = iota + 1
	ParamPath
	ParamQuery
	ParamHeader
)

var paramTypeNames = [...]string{
	ParamBody:   "body",
	ParamPath:   "path",
	ParamQuery:  "query",
	ParamHeader: "header",
}

func (p ParamType) String() string {
	return paramTypeNames[p]
}

type AuthKind uint8

const (
	AuthNone AuthKind = iota
	AuthHeader
	AuthCookie
)

var authKindNames = [...]string{
	AuthNone:   "none",
	AuthHeader: "header",
	AuthCookie: "cookie",
}

func (k AuthKind) String() string {
	return authKindNames[k]
}

type Auth struct {
	Kind AuthKind
	// Cookie is set when Kind is AuthCookie.
	Cookie string
}

func (a Auth) String() string {
	if a.Kind == AuthCookie {
		return "cookie:" + a.Cookie
	}
	return a.Kind.String()
}

type ServiceDefinition struct {
	Meta
	BasePath    string
	DefaultAuth Auth
	Endpoints   []Endpoint
}

type Endpoint struct {
	Name   names.EndpointName
	Method string
	// Path is the full HTTP path, including the service's base path.
	Path string
	// Auth overrides the service's default when not nil.
	Auth       *Auth
	Args       []Argument
	Returns    Type
	Docs       string
	Deprecated string
	Markers    []Type
	Tags       []string
	Errors     []EndpointError
}

// An EndpointError references an error definition the endpoint may return.
type EndpointError struct {
	Error Type
	Docs  string
}

type Argument struct {
	Name      names.ParameterName
	Type      Type
	ParamType ParamType
	// ParamID is the wire name of a query or header parameter.
	ParamID string
	Docs    string
	Markers []Type
}
