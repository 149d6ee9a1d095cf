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

// Package syntax parses schema source text: type expressions and the YAML
// documents that declare types, errors and services.
package syntax

import (
	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/parsec"
	"github.com/palantir/conjure-sub003/schema"
)

// Built-in scalar types by keyword.
var builtinTypes = map[string]schema.Type{
	"string":      schema.String,
	"integer":     schema.Integer,
	"double":      schema.Double,
	"boolean":     schema.Boolean,
	"safelong":    schema.SafeLong,
	"uuid":        schema.UUID,
	"rid":         schema.RID,
	"bearertoken": schema.BearerToken,
	"any":         schema.Any{},
	"binary":      schema.Binary{},
	"datetime":    schema.DateTime{},
}

var typeGrammar = newTypeGrammar()

// ParseType parses a type expression such as "map<string, list<Foo>>" or
// "other.Bar". Failures are [*parsec.Error] values carrying the position of
// the offending text.
func ParseType(src string) (schema.Type, error) {
	return parsec.Parse(parsec.Whitespace(typeGrammar), src)
}

func newTypeGrammar() parsec.Parser[schema.Type] {
	var typ parsec.Parser[schema.Type]
	ref := func(c *parsec.Cursor) (schema.Type, error) {
		return typ(c)
	}

	container := func(keyword string, wrap func(schema.Type) schema.Type) parsec.Parser[schema.Type] {
		return parsec.Apply(
			parsec.Prefix(parsec.Keyword(keyword), parsec.LiberalBetween("<", ref, ">")),
			func(item schema.Type) (schema.Type, error) {
				return wrap(item), nil
			},
		)
	}

	mapType := parsec.Apply(
		parsec.Prefix(parsec.Keyword("map"), parsec.LiberalBetween("<",
			parsec.KeyValue(ref, parsec.Whitespace(parsec.Expect(",")), parsec.Whitespace(ref)),
			">",
		)),
		func(kv parsec.Pair[schema.Type, schema.Type]) (schema.Type, error) {
			return schema.Map{Key: kv.Key, Value: kv.Value}, nil
		},
	)

	builtin := func(keyword string) parsec.Parser[schema.Type] {
		return parsec.Apply(parsec.Keyword(keyword), func(string) (schema.Type, error) {
			return builtinTypes[keyword], nil
		})
	}

	identifier := parsec.RawString("a type name", parsec.IsIdentifierChar, nil)

	foreignRef := parsec.Apply(
		parsec.KeyValue(
			parsec.RawString("a namespace", parsec.IsIdentifierChar, isNamespaceStart),
			parsec.Expect("."),
			identifier,
		),
		func(kv parsec.Pair[string, string]) (schema.Type, error) {
			ns, err := names.NewNamespace(kv.Key)
			if err != nil {
				return nil, err
			}
			name, err := names.NewTypeName(kv.Value)
			if err != nil {
				return nil, err
			}
			return schema.ForeignReference{Namespace: ns, Name: name}, nil
		},
	)

	localRef := parsec.Apply(identifier, resolveLocalName)

	typ = parsec.Or("a type",
		mapType,
		container("list", func(t schema.Type) schema.Type { return schema.List{Item: t} }),
		container("set", func(t schema.Type) schema.Type { return schema.Set{Item: t} }),
		container("optional", func(t schema.Type) schema.Type { return schema.Optional{Item: t} }),
		builtin("any"),
		builtin("binary"),
		builtin("datetime"),
		foreignRef,
		localRef,
	)
	return typ
}

// resolveLocalName maps an unqualified identifier to a built-in scalar or a
// reference to a type in the same file.
func resolveLocalName(ident string) (schema.Type, error) {
	if t, ok := builtinTypes[ident]; ok {
		return t, nil
	}
	if names.IsContainerKeyword(ident) {
		return nil, errContainerWithoutItem(ident)
	}
	name, err := names.NewTypeName(ident)
	if err != nil {
		return nil, err
	}
	return schema.LocalReference{Name: name}, nil
}

func isNamespaceStart(r rune) bool {
	return parsec.IsIdentifierChar(r) && !('0' <= r && r <= '9')
}
