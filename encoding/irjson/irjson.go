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

// Package irjson encodes compiled schemas as Conjure IR (version 1) JSON, the
// format consumed by code generators.
package irjson

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/schema"
)

const Version = 1

type Document struct {
	Version    int                 `json:"version"`
	Errors     []ErrorDefinition   `json:"errors"`
	Types      []TypeDefinition    `json:"types"`
	Services   []ServiceDefinition `json:"services"`
	Extensions map[string]any      `json:"extensions"`
}

type TypeName struct {
	Name    string `json:"name"`
	Package string `json:"package"`
}

// A Type is a tagged union: Type names which of the other fields is set.
type Type struct {
	Type      string             `json:"type"`
	Primitive string             `json:"primitive,omitempty"`
	Optional  *OptionalType      `json:"optional,omitempty"`
	List      *ListType          `json:"list,omitempty"`
	Set       *SetType           `json:"set,omitempty"`
	Map       *MapType           `json:"map,omitempty"`
	Reference *TypeName          `json:"reference,omitempty"`
	External  *ExternalReference `json:"external,omitempty"`
}

type OptionalType struct {
	ItemType Type `json:"itemType"`
}

type ListType struct {
	ItemType Type `json:"itemType"`
}

type SetType struct {
	ItemType Type `json:"itemType"`
}

type MapType struct {
	KeyType   Type `json:"keyType"`
	ValueType Type `json:"valueType"`
}

type ExternalReference struct {
	ExternalReference TypeName `json:"externalReference"`
	Fallback          Type     `json:"fallback"`
}

type FieldDefinition struct {
	FieldName  string `json:"fieldName"`
	Type       Type   `json:"type"`
	Docs       string `json:"docs,omitempty"`
	Deprecated string `json:"deprecated,omitempty"`
}

type TypeDefinition struct {
	Type   string            `json:"type"`
	Object *ObjectDefinition `json:"object,omitempty"`
	Enum   *EnumDefinition   `json:"enum,omitempty"`
	Alias  *AliasDefinition  `json:"alias,omitempty"`
	Union  *UnionDefinition  `json:"union,omitempty"`
}

type ObjectDefinition struct {
	TypeName TypeName          `json:"typeName"`
	Fields   []FieldDefinition `json:"fields"`
	Docs     string            `json:"docs,omitempty"`
}

type EnumDefinition struct {
	TypeName TypeName              `json:"typeName"`
	Values   []EnumValueDefinition `json:"values"`
	Docs     string                `json:"docs,omitempty"`
}

type EnumValueDefinition struct {
	Value      string `json:"value"`
	Docs       string `json:"docs,omitempty"`
	Deprecated string `json:"deprecated,omitempty"`
}

type AliasDefinition struct {
	TypeName TypeName `json:"typeName"`
	Alias    Type     `json:"alias"`
	Docs     string   `json:"docs,omitempty"`
}

type UnionDefinition struct {
	TypeName TypeName          `json:"typeName"`
	Union    []FieldDefinition `json:"union"`
	Docs     string            `json:"docs,omitempty"`
}

type ErrorDefinition struct {
	ErrorName  TypeName          `json:"errorName"`
	Docs       string            `json:"docs,omitempty"`
	Namespace  string            `json:"namespace"`
	Code       string            `json:"code"`
	SafeArgs   []FieldDefinition `json:"safeArgs"`
	UnsafeArgs []FieldDefinition `json:"unsafeArgs"`
}

type ServiceDefinition struct {
	ServiceName TypeName             `json:"serviceName"`
	Endpoints   []EndpointDefinition `json:"endpoints"`
	Docs        string               `json:"docs,omitempty"`
}

type EndpointDefinition struct {
	EndpointName string               `json:"endpointName"`
	HTTPMethod   string               `json:"httpMethod"`
	HTTPPath     string               `json:"httpPath"`
	Auth         *AuthType            `json:"auth,omitempty"`
	Args         []ArgumentDefinition `json:"args"`
	Returns      *Type                `json:"returns,omitempty"`
	Docs         string               `json:"docs,omitempty"`
	Deprecated   string               `json:"deprecated,omitempty"`
	Markers      []Type               `json:"markers"`
	Tags         []string             `json:"tags"`
	Errors       []EndpointError      `json:"errors"`
}

type AuthType struct {
	Type   string      `json:"type"`
	Header *struct{}   `json:"header,omitempty"`
	Cookie *CookieAuth `json:"cookie,omitempty"`
}

type CookieAuth struct {
	CookieName string `json:"cookieName"`
}

type ArgumentDefinition struct {
	ArgName   string        `json:"argName"`
	Type      Type          `json:"type"`
	ParamType ParameterType `json:"paramType"`
	Docs      string        `json:"docs,omitempty"`
	Markers   []Type        `json:"markers"`
	Tags      []string      `json:"tags"`
}

type ParameterType struct {
	Type   string    `json:"type"`
	Body   *struct{} `json:"body,omitempty"`
	Header *ParamID  `json:"header,omitempty"`
	Path   *struct{} `json:"path,omitempty"`
	Query  *ParamID  `json:"query,omitempty"`
}

type ParamID struct {
	ParamID string `json:"paramId"`
}

type EndpointError struct {
	Error TypeName `json:"error"`
	Docs  string   `json:"docs,omitempty"`
}

var ErrFailedCompilation = errors.New("irjson: cannot encode a compilation that failed")

// Encode renders the units of a successful compilation as indented JSON.
func Encode(result *compiler.CompileResult) ([]byte, error) {
	if len(result.Errors) > 0 {
		return nil, ErrFailedCompilation
	}
	doc, err := Build(result.Units)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}
	return append(out, '\n'), nil
}

// Decode parses an IR document, rejecting unknown versions.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("irjson: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("irjson: unsupported IR version %d", doc.Version)
	}
	return &doc, nil
}

// Build converts compiled units into one IR document. Definitions are
// sorted by package, then name.
func Build(units []*compiler.Unit) (*Document, error) {
	doc := &Document{
		Version:    Version,
		Errors:     []ErrorDefinition{},
		Types:      []TypeDefinition{},
		Services:   []ServiceDefinition{},
		Extensions: map[string]any{},
	}
	for _, unit := range units {
		b := builder{unit: unit}
		for _, t := range unit.File.Types {
			def, err := b.typeDefinition(t)
			if err != nil {
				return nil, err
			}
			doc.Types = append(doc.Types, def)
		}
		for _, e := range unit.File.Errors {
			def, err := b.errorDefinition(e)
			if err != nil {
				return nil, err
			}
			doc.Errors = append(doc.Errors, def)
		}
		for _, svc := range unit.File.Services {
			def, err := b.serviceDefinition(svc)
			if err != nil {
				return nil, err
			}
			doc.Services = append(doc.Services, def)
		}
	}
	slices.SortStableFunc(doc.Types, func(a, b TypeDefinition) int {
		return compareNames(a.typeName(), b.typeName())
	})
	slices.SortStableFunc(doc.Errors, func(a, b ErrorDefinition) int {
		return compareNames(a.ErrorName, b.ErrorName)
	})
	slices.SortStableFunc(doc.Services, func(a, b ServiceDefinition) int {
		return compareNames(a.ServiceName, b.ServiceName)
	})
	return doc, nil
}

func compareNames(a, b TypeName) int {
	return cmp.Or(
		cmp.Compare(a.Package, b.Package),
		cmp.Compare(a.Name, b.Name),
	)
}

func (def TypeDefinition) typeName() TypeName {
	switch def.Type {
	case "object":
		return def.Object.TypeName
	case "enum":
		return def.Enum.TypeName
	case "alias":
		return def.Alias.TypeName
	case "union":
		return def.Union.TypeName
	}
	panic("unreachable")
}

type builder struct {
	unit *compiler.Unit
}

func (b *builder) name(name fmt.Stringer, meta schema.Meta) TypeName {
	return TypeName{
		Name:    name.String(),
		Package: b.unit.File.PackageOf(meta).String(),
	}
}

func (b *builder) typeDefinition(t schema.NamedDefinition) (TypeDefinition, error) {
	name := b.name(t.Name, t.Def.Metadata())
	docs := t.Def.Metadata().Docs
	switch def := t.Def.(type) {
	case *schema.ObjectDefinition:
		fields, err := b.fields(def.Fields)
		if err != nil {
			return TypeDefinition{}, err
		}
		return TypeDefinition{Type: "object", Object: &ObjectDefinition{
			TypeName: name,
			Fields:   fields,
			Docs:     docs,
		}}, nil
	case *schema.EnumDefinition:
		values := make([]EnumValueDefinition, 0, len(def.Values))
		for _, v := range def.Values {
			values = append(values, EnumValueDefinition{
				Value:      v.Value,
				Docs:       v.Docs,
				Deprecated: v.Deprecated,
			})
		}
		return TypeDefinition{Type: "enum", Enum: &EnumDefinition{
			TypeName: name,
			Values:   values,
			Docs:     docs,
		}}, nil
	case *schema.AliasDefinition:
		aliased, err := b.typ(def.Aliased)
		if err != nil {
			return TypeDefinition{}, err
		}
		return TypeDefinition{Type: "alias", Alias: &AliasDefinition{
			TypeName: name,
			Alias:    aliased,
			Docs:     docs,
		}}, nil
	case *schema.UnionDefinition:
		variants, err := b.fields(def.Variants)
		if err != nil {
			return TypeDefinition{}, err
		}
		return TypeDefinition{Type: "union", Union: &UnionDefinition{
			TypeName: name,
			Union:    variants,
			Docs:     docs,
		}}, nil
	case *schema.ErrorDefinition:
		return TypeDefinition{}, fmt.Errorf("irjson: error %s declared as a type", t.Name)
	}
	panic("unreachable")
}

func (b *builder) errorDefinition(e schema.NamedError) (ErrorDefinition, error) {
	safeArgs, err := b.fields(e.Def.SafeArgs)
	if err != nil {
		return ErrorDefinition{}, err
	}
	unsafeArgs, err := b.fields(e.Def.UnsafeArgs)
	if err != nil {
		return ErrorDefinition{}, err
	}
	return ErrorDefinition{
		ErrorName:  b.name(e.Name, e.Def.Meta),
		Docs:       e.Def.Docs,
		Namespace:  e.Def.Namespace.String(),
		Code:       e.Def.Code.String(),
		SafeArgs:   safeArgs,
		UnsafeArgs: unsafeArgs,
	}, nil
}

func (b *builder) serviceDefinition(svc schema.NamedService) (ServiceDefinition, error) {
	out := ServiceDefinition{
		ServiceName: b.name(svc.Name, svc.Def.Meta),
		Endpoints:   make([]EndpointDefinition, 0, len(svc.Def.Endpoints)),
		Docs:        svc.Def.Docs,
	}
	for _, ep := range svc.Def.Endpoints {
		auth := svc.Def.DefaultAuth
		if ep.Auth != nil {
			auth = *ep.Auth
		}
		def := EndpointDefinition{
			EndpointName: ep.Name.String(),
			HTTPMethod:   ep.Method,
			HTTPPath:     ep.Path,
			Auth:         authType(auth),
			Args:         make([]ArgumentDefinition, 0, len(ep.Args)),
			Docs:         ep.Docs,
			Deprecated:   ep.Deprecated,
			Tags:         append([]string{}, ep.Tags...),
			Errors:       make([]EndpointError, 0, len(ep.Errors)),
		}
		var err error
		if def.Markers, err = b.types(ep.Markers); err != nil {
			return out, err
		}
		if ep.Returns != nil {
			returns, err := b.typ(ep.Returns)
			if err != nil {
				return out, err
			}
			def.Returns = &returns
		}
		for _, arg := range ep.Args {
			argType, err := b.typ(arg.Type)
			if err != nil {
				return out, err
			}
			markers, err := b.types(arg.Markers)
			if err != nil {
				return out, err
			}
			def.Args = append(def.Args, ArgumentDefinition{
				ArgName:   arg.Name.String(),
				Type:      argType,
				ParamType: paramType(arg),
				Docs:      arg.Docs,
				Markers:   markers,
				Tags:      []string{},
			})
		}
		for _, epErr := range ep.Errors {
			ref, err := b.typ(epErr.Error)
			if err != nil {
				return out, err
			}
			if ref.Reference == nil {
				return out, fmt.Errorf("irjson: endpoint error %s is not a reference", epErr.Error)
			}
			def.Errors = append(def.Errors, EndpointError{
				Error: *ref.Reference,
				Docs:  epErr.Docs,
			})
		}
		out.Endpoints = append(out.Endpoints, def)
	}
	return out, nil
}

func authType(auth schema.Auth) *AuthType {
	switch auth.Kind {
	case schema.AuthNone:
		return nil
	case schema.AuthHeader:
		return &AuthType{Type: "header", Header: &struct{}{}}
	case schema.AuthCookie:
		return &AuthType{Type: "cookie", Cookie: &CookieAuth{CookieName: auth.Cookie}}
	}
	panic("unreachable")
}

func paramType(arg schema.Argument) ParameterType {
	switch arg.ParamType {
	case schema.ParamBody:
		return ParameterType{Type: "body", Body: &struct{}{}}
	case schema.ParamPath:
		return ParameterType{Type: "path", Path: &struct{}{}}
	case schema.ParamQuery:
		return ParameterType{Type: "query", Query: &ParamID{ParamID: arg.ParamID}}
	case schema.ParamHeader:
		return ParameterType{Type: "header", Header: &ParamID{ParamID: arg.ParamID}}
	}
	panic("unreachable")
}

func (b *builder) fields(fields []schema.Field) ([]FieldDefinition, error) {
	out := make([]FieldDefinition, 0, len(fields))
	for _, f := range fields {
		t, err := b.typ(f.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, FieldDefinition{
			FieldName:  f.Name.String(),
			Type:       t,
			Docs:       f.Docs,
			Deprecated: f.Deprecated,
		})
	}
	return out, nil
}

func (b *builder) types(types []schema.Type) ([]Type, error) {
	out := make([]Type, 0, len(types))
	for _, t := range types {
		conv, err := b.typ(t)
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

func primitive(name string) Type {
	return Type{Type: "primitive", Primitive: strings.ToUpper(name)}
}

func (b *builder) typ(t schema.Type) (Type, error) {
	switch t := t.(type) {
	case schema.Primitive, schema.Any, schema.Binary, schema.DateTime:
		return primitive(t.String()), nil
	case schema.List:
		item, err := b.typ(t.Item)
		if err != nil {
			return Type{}, err
		}
		return Type{Type: "list", List: &ListType{ItemType: item}}, nil
	case schema.Set:
		item, err := b.typ(t.Item)
		if err != nil {
			return Type{}, err
		}
		return Type{Type: "set", Set: &SetType{ItemType: item}}, nil
	case schema.Optional:
		item, err := b.typ(t.Item)
		if err != nil {
			return Type{}, err
		}
		return Type{Type: "optional", Optional: &OptionalType{ItemType: item}}, nil
	case schema.Map:
		key, err := b.typ(t.Key)
		if err != nil {
			return Type{}, err
		}
		value, err := b.typ(t.Value)
		if err != nil {
			return Type{}, err
		}
		return Type{Type: "map", Map: &MapType{KeyType: key, ValueType: value}}, nil
	case schema.LocalReference:
		def, ok := b.unit.File.Lookup(t.Name)
		if !ok {
			return Type{}, fmt.Errorf("irjson: unresolved reference %s in %s", t, b.unit.File.Path)
		}
		name := b.name(t.Name, def.Metadata())
		return Type{Type: "reference", Reference: &name}, nil
	case schema.ForeignReference:
		def, file, err := b.unit.Imports.ResolveForeign(t)
		if err != nil {
			return Type{}, fmt.Errorf("irjson: %w", err)
		}
		name := TypeName{
			Name:    t.Name.String(),
			Package: file.PackageOf(def.Metadata()).String(),
		}
		return Type{Type: "reference", Reference: &name}, nil
	case schema.External:
		fallback, err := b.typ(t.Fallback)
		if err != nil {
			return Type{}, err
		}
		return Type{Type: "external", External: &ExternalReference{
			ExternalReference: externalName(t),
			Fallback:          fallback,
		}}, nil
	}
	panic("unreachable")
}

// externalName splits the Java binding of an external type (or, failing
// that, the first binding by language) into package and name.
func externalName(t schema.External) TypeName {
	binding, ok := t.Bindings["java"]
	if !ok {
		langs := slices.Sorted(maps.Keys(t.Bindings))
		if len(langs) == 0 {
			return TypeName{Name: t.Name.String()}
		}
		binding = t.Bindings[langs[0]]
	}
	idx := strings.LastIndexByte(binding, '.')
	if idx < 0 {
		return TypeName{Name: binding}
	}
	return TypeName{Name: binding[idx+1:], Package: binding[:idx]}
}
