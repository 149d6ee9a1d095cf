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
	"strings"

	"github.com/palantir/conjure-sub003/parsec"
)

// A PathSegment is one '/'-separated component of an HTTP path template.
type PathSegment struct {
	// Literal is the segment text, including braces for parameters.
	Literal string
	// Param is the parameter name of a "{name}" or "{name:regex}" segment.
	Param string
	// Regex is the pattern of a "{name:regex}" segment.
	Regex string
}

func (s PathSegment) IsParam() bool {
	return s.Param != ""
}

var pathGrammar = newPathGrammar()

func newPathGrammar() parsec.Parser[[]PathSegment] {
	param := parsec.Apply(
		parsec.Between(
			parsec.Expect("{"),
			parsec.RawString("a path parameter", func(r rune) bool { return r != '}' }, nil),
			parsec.Expect("}"),
		),
		func(inner string) (PathSegment, error) {
			name, regex, _ := strings.Cut(inner, ":")
			return PathSegment{
				Literal: "{" + inner + "}",
				Param:   name,
				Regex:   regex,
			}, nil
		},
	)
	literal := parsec.Apply(
		parsec.RawString("a path segment", func(r rune) bool {
			return r != '/' && r != '{' && r != '}'
		}, nil),
		func(s string) (PathSegment, error) {
			return PathSegment{Literal: s}, nil
		},
	)
	segment := parsec.Or("a path segment", param, literal)
	return parsec.Prefix(parsec.Expect("/"), parsec.List(segment, parsec.Expect("/")))
}

// ParsePath splits an absolute HTTP path template such as
// "/items/{id}/tags" into segments.
func ParsePath(path string) ([]PathSegment, error) {
	return parsec.Parse(pathGrammar, path)
}

// PathParams returns the parameter names of a path template in order. An
// unparseable template has no parameters.
func PathParams(path string) []string {
	segments, err := ParsePath(path)
	if err != nil {
		return nil
	}
	var params []string
	for _, seg := range segments {
		if seg.IsParam() {
			params = append(params, seg.Param)
		}
	}
	return params
}

// JoinPath appends an endpoint path to a service base path.
func JoinPath(base, path string) string {
	switch {
	case path == "/" || path == "":
		return base
	case base == "/" || base == "":
		return path
	}
	return strings.TrimSuffix(base, "/") + path
}
