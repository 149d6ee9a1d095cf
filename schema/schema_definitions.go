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

// A Definition is a named type or error declared in a schema file. The set
// of implementations is closed.
type Definition interface {
	Metadata() Meta
	isDefinition()
}

// Meta holds the properties shared by every definition.
type Meta struct {
	// Package overrides the file's default package when not zero.
	Package names.Package
	Docs    string
}

func (m Meta) Metadata() Meta {
	return m
}

type ObjectDefinition struct {
	Meta
	Fields []Field
}

type EnumDefinition struct {
	Meta
	Values []EnumValue
}

type AliasDefinition struct {
	Meta
	Aliased Type
}

type UnionDefinition struct {
	Meta
	Variants []Field
}

type ErrorDefinition struct {
	Meta
	Namespace  names.ErrorNamespace
	Code       names.ErrorCode
	SafeArgs   []Field
	UnsafeArgs []Field
}

func (*ObjectDefinition) isDefinition() {}
func (*EnumDefinition) isDefinition()   {}
func (*AliasDefinition) isDefinition()  {}
func (*UnionDefinition) isDefinition()  {}
func (*ErrorDefinition) isDefinition()  {}

type Field struct {
	Name       names.FieldName
	Type       Type
	Docs       string
	Deprecated string
}

type EnumValue struct {
	Value      string
	Docs       string
	Deprecated string
}

// DefinitionKind is a short lower-case label for a definition's variant.
func DefinitionKind(def Definition) string {
	switch def.(type) {
	case *ObjectDefinition:
		return "object"
	case *EnumDefinition:
		return "enum"
	case *AliasDefinition:
		return "alias"
	case *UnionDefinition:
		return "union"
	case *ErrorDefinition:
		return "error"
	}
	panic("unreachable")
}
