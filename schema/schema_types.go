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

// Package schema is the in-memory model of a parsed schema file.
package schema

import (
	"fmt"
	"maps"

	"github.com/palantir/conjure-sub003/names"
)

// A Type is a type expression. The set of implementations is closed.
type Type interface {
	fmt.Stringer
	isType()
}

type Primitive uint8

const (
	String Primitive = iota + 1
	Integer
	Double
	Boolean
	SafeLong
	UUID
	RID
	BearerToken
)

var primitiveNames = [...]string{
	String:      "string",
	Integer:     "integer",
	Double:      "double",
	Boolean:     "boolean",
	SafeLong:    "safelong",
	UUID:        "uuid",
	RID:         "rid",
	BearerToken: "bearertoken",
}

func (p Primitive) String() string {
	return primitiveNames[p]
}

type Any struct{}

func (Any) String() string { return "any" }

type Binary struct{}

func (Binary) String() string { return "binary" }

type DateTime struct{}

func (DateTime) String() string { return "datetime" }

type List struct {
	Item Type
}

func (t List) String() string {
	return fmt.Sprintf("list<%s>", t.Item)
}

type Set struct {
	Item Type
}

func (t Set) String() string {
	return fmt.Sprintf("set<%s>", t.Item)
}

type Map struct {
	Key   Type
	Value Type
}

func (t Map) String() string {
	return fmt.Sprintf("map<%s, %s>", t.Key, t.Value)
}

type Optional struct {
	Item Type
}

func (t Optional) String() string {
	return fmt.Sprintf("optional<%s>", t.Item)
}

// A LocalReference names a type defined in the same file.
type LocalReference struct {
	Name names.TypeName
}

func (t LocalReference) String() string {
	return t.Name.String()
}

// A ForeignReference names a type defined in the file imported under
// Namespace.
type ForeignReference struct {
	Namespace names.Namespace
	Name      names.TypeName
}

func (t ForeignReference) String() string {
	return t.Namespace.String() + "." + t.Name.String()
}

// An External is a type provided by the target language, with a built-in
// fallback for languages that have no binding.
type External struct {
	Name     names.TypeName
	Fallback Type
	Bindings map[string]string
}

func (t External) String() string {
	return t.Name.String()
}

func (Primitive) isType()        {}
func (Any) isType()              {}
func (Binary) isType()           {}
func (DateTime) isType()         {}
func (List) isType()             {}
func (Set) isType()              {}
func (Map) isType()              {}
func (Optional) isType()         {}
func (LocalReference) isType()   {}
func (ForeignReference) isType() {}
func (External) isType()         {}

// Kind identifies the variant of a [Type].
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindAny
	KindBinary
	KindDateTime
	KindList
	KindSet
	KindMap
	KindOptional
	KindLocalReference
	KindForeignReference
	KindExternal
)

// AllTypeKinds lists every [Kind], for tests that check a switch over
// types is exhaustive.
var AllTypeKinds = []Kind{
	KindPrimitive,
	KindAny,
	KindBinary,
	KindDateTime,
	KindList,
	KindSet,
	KindMap,
	KindOptional,
	KindLocalReference,
	KindForeignReference,
	KindExternal,
}

func KindOf(t Type) Kind {
	switch t.(type) {
	case Primitive:
		return KindPrimitive
	case Any:
		return KindAny
	case Binary:
		return KindBinary
	case DateTime:
		return KindDateTime
	case List:
		return KindList
	case Set:
		return KindSet
	case Map:
		return KindMap
	case Optional:
		return KindOptional
	case LocalReference:
		return KindLocalReference
	case ForeignReference:
		return KindForeignReference
	case External:
		return KindExternal
	}
	panic("unreachable")
}

// IsBuiltin reports whether t is a built-in scalar, the only types an
// external may fall back to.
func IsBuiltin(t Type) bool {
	switch t.(type) {
	case Primitive, Any, Binary, DateTime:
		return true
	case List, Set, Map, Optional, LocalReference, ForeignReference, External:
		return false
	}
	panic("unreachable")
}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Primitive, Any, Binary, DateTime, LocalReference, ForeignReference:
		return a == b
	case List:
		b, ok := b.(List)
		return ok && Equal(a.Item, b.Item)
	case Set:
		b, ok := b.(Set)
		return ok && Equal(a.Item, b.Item)
	case Optional:
		b, ok := b.(Optional)
		return ok && Equal(a.Item, b.Item)
	case Map:
		b, ok := b.(Map)
		return ok && Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case External:
		b, ok := b.(External)
		return ok && a.Name == b.Name &&
			Equal(a.Fallback, b.Fallback) &&
			maps.Equal(a.Bindings, b.Bindings)
	}
	panic("unreachable")
}

// Walk calls fn for t and each type nested within it, outermost first. If
// fn returns false the types nested within that type are skipped.
func Walk(t Type, fn func(Type) bool) {
	if !fn(t) {
		return
	}
	switch t := t.(type) {
	case Primitive, Any, Binary, DateTime, LocalReference, ForeignReference, External:
	case List:
		Walk(t.Item, fn)
	case Set:
		Walk(t.Item, fn)
	case Optional:
		Walk(t.Item, fn)
	case Map:
		Walk(t.Key, fn)
		Walk(t.Value, fn)
	default:
		panic("unreachable")
	}
}

// Rewrite rebuilds t bottom-up, replacing each type with fn's result.
func Rewrite(t Type, fn func(Type) Type) Type {
	switch tt := t.(type) {
	case Primitive, Any, Binary, DateTime, LocalReference, ForeignReference, External:
		return fn(t)
	case List:
		return fn(List{Item: Rewrite(tt.Item, fn)})
	case Set:
		return fn(Set{Item: Rewrite(tt.Item, fn)})
	case Optional:
		return fn(Optional{Item: Rewrite(tt.Item, fn)})
	case Map:
		return fn(Map{Key: Rewrite(tt.Key, fn), Value: Rewrite(tt.Value, fn)})
	}
	panic("unreachable")
}
