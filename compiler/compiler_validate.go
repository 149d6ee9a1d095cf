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
	"context"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/schema"
)

const enumValuePattern = `^[A-Z][A-Z0-9]*(_[A-Z0-9]+)*$`

var enumValueRegexp = regexp.MustCompile(enumValuePattern)

type validator struct {
	name string
	fn   func(v *validation)
}

// Validators run in this order. Later validators may assume the checks of
// earlier ones passed, except in report-all mode where they must tolerate
// unresolved references.
var validators = []validator{
	{"naming-conventions", validateNames},
	{"references", validateReferences},
	{"unique-enum-values", validateUniqueEnumValues},
	{"enum-value-format", validateEnumValueFormat},
	{"unique-field-names", validateUniqueFieldNames},
	{"union-keys", validateUnionKeys},
	{"map-keys", validateMapKeys},
	{"no-recursive-types", validateNoRecursiveTypes},
	{"no-nested-optionals", validateNoNestedOptionals},
	{"unique-names", validateUniqueNames},
	{"services", validateServices},
}

type validation struct {
	*compiler
	name string
	stop bool
}

// fail records err and reports whether the validator should return.
func (v *validation) fail(err *Error) bool {
	v.err(err)
	v.opts.metrics.validationFailed(v.name)
	v.stop = !v.opts.reportAll
	return v.stop
}

func (c *compiler) validate(ctx context.Context) {
	for _, val := range validators {
		_, span := c.tracer.Start(ctx, "conjure/validate/"+val.name)
		span.SetAttributes(attribute.String("conjure.validator", val.name))
		before := len(c.errors)

		v := &validation{compiler: c, name: val.name}
		val.fn(v)

		if len(c.errors) > before {
			span.RecordError(c.errors[before])
			span.SetStatus(codes.Error, c.errors[before].Message())
		}
		span.End()
		c.log.Debug().
			Str("validator", val.name).
			Int("errors", len(c.errors)-before).
			Msg("validated")
		if v.stop {
			return
		}
	}
}

// A typeUse is one place a file mentions a type.
type typeUse struct {
	Type schema.Type
	// Owner names the declaration, such as "object Foo".
	Owner string
	// Location names the position within the declaration, such as
	// "field 'bar' of Foo".
	Location string
}

func typeUses(file *schema.SchemaFile) iter.Seq[typeUse] {
	return func(yield func(typeUse) bool) {
		yieldFields := func(owner string, name names.TypeName, fields []schema.Field) bool {
			for _, f := range fields {
				loc := fmt.Sprintf("field '%s' of %s", f.Name, name)
				if !yield(typeUse{f.Type, owner, loc}) {
					return false
				}
			}
			return true
		}
		for _, t := range file.Types {
			switch def := t.Def.(type) {
			case *schema.ObjectDefinition:
				if !yieldFields("object "+t.Name.String(), t.Name, def.Fields) {
					return
				}
			case *schema.UnionDefinition:
				if !yieldFields("union "+t.Name.String(), t.Name, def.Variants) {
					return
				}
			case *schema.AliasDefinition:
				owner := "alias " + t.Name.String()
				if !yield(typeUse{def.Aliased, owner, owner}) {
					return
				}
			case *schema.EnumDefinition:
			default:
				panic("unreachable")
			}
		}
		for _, e := range file.Errors {
			owner := "one of arguments of error " + e.Name.String()
			if !yieldFields(owner, e.Name, e.Def.SafeArgs) || !yieldFields(owner, e.Name, e.Def.UnsafeArgs) {
				return
			}
		}
		for _, s := range file.Services {
			for _, ep := range s.Def.Endpoints {
				for _, arg := range ep.Args {
					owner := "one of the arguments of endpoint " + ep.Name.String()
					loc := fmt.Sprintf("argument '%s' of endpoint %s", arg.Name, ep.Name)
					if !yield(typeUse{arg.Type, owner, loc}) {
						return
					}
					for _, marker := range arg.Markers {
						if !yield(typeUse{marker, owner, loc}) {
							return
						}
					}
				}
				if ep.Returns != nil {
					owner := "return type of endpoint " + ep.Name.String()
					if !yield(typeUse{ep.Returns, owner, owner}) {
						return
					}
				}
				for _, marker := range ep.Markers {
					loc := "markers of endpoint " + ep.Name.String()
					if !yield(typeUse{marker, loc, loc}) {
						return
					}
				}
				for _, epErr := range ep.Errors {
					loc := "errors of endpoint " + ep.Name.String()
					if !yield(typeUse{epErr.Error, loc, loc}) {
						return
					}
				}
			}
		}
	}
}

// lookup finds the definition a reference type names, and the unit that
// defines it. It reports false for types that are not references or do not
// resolve.
func (v *validation) lookup(unit *Unit, t schema.Type) (names.TypeName, schema.Definition, *Unit, bool) {
	switch t := t.(type) {
	case schema.LocalReference:
		def, ok := unit.File.Lookup(t.Name)
		return t.Name, def, unit, ok
	case schema.ForeignReference:
		def, file, err := unit.Imports.ResolveForeign(t)
		if err != nil {
			return t.Name, nil, nil, false
		}
		return t.Name, def, v.unitsByPath[file.Path], true
	}
	return names.TypeName{}, nil, nil, false
}

// dealias follows aliases until reaching a type that is not an alias
// reference, returning it and the unit it is relative to.
func (v *validation) dealias(unit *Unit, t schema.Type) (schema.Type, *Unit) {
	for range len(v.units) * 64 {
		_, def, owner, ok := v.lookup(unit, t)
		if !ok {
			return t, unit
		}
		alias, ok := def.(*schema.AliasDefinition)
		if !ok {
			return t, unit
		}
		t, unit = alias.Aliased, owner
	}
	return t, unit
}

func validateNames(v *validation) {
	check := func(path string, err error) bool {
		return err != nil && v.fail(errInvalidName(path, err))
	}
	checkFields := func(path string, owner names.TypeName, fields []schema.Field) bool {
		for _, f := range fields {
			if _, err := names.NewFieldName(f.Name.String()); check(path, err) {
				return true
			}
			if f.Name.Case() != names.CamelCase {
				v.warn(warnFieldNameCase(path, owner, f.Name))
			}
		}
		return false
	}
	checkMeta := func(path string, name names.TypeName, meta schema.Meta) bool {
		if _, err := names.NewTypeName(name.String()); check(path, err) {
			return true
		}
		_, err := names.NewPackage(meta.Package.String())
		return check(path, err)
	}

	for _, unit := range v.units {
		file := unit.File
		path := file.Path
		if _, err := names.NewPackage(file.DefaultPackage.String()); check(path, err) {
			return
		}
		for _, imp := range file.Imports {
			if _, err := names.NewNamespace(imp.Namespace.String()); check(path, err) {
				return
			}
		}
		for _, t := range file.Types {
			if checkMeta(path, t.Name, t.Def.Metadata()) {
				return
			}
			switch def := t.Def.(type) {
			case *schema.ObjectDefinition:
				if checkFields(path, t.Name, def.Fields) {
					return
				}
			case *schema.UnionDefinition:
				if checkFields(path, t.Name, def.Variants) {
					return
				}
			case *schema.AliasDefinition, *schema.EnumDefinition:
			default:
				panic("unreachable")
			}
		}
		for _, e := range file.Errors {
			if checkMeta(path, e.Name, e.Def.Meta) {
				return
			}
			if _, err := names.NewErrorNamespace(e.Def.Namespace.String()); check(path, err) {
				return
			}
			if _, err := names.ParseErrorCode(e.Def.Code.String()); check(path, err) {
				return
			}
			if checkFields(path, e.Name, e.Def.SafeArgs) || checkFields(path, e.Name, e.Def.UnsafeArgs) {
				return
			}
		}
		for _, s := range file.Services {
			if checkMeta(path, s.Name, s.Def.Meta) {
				return
			}
			for _, ep := range s.Def.Endpoints {
				if _, err := names.NewEndpointName(ep.Name.String()); check(path, err) {
					return
				}
				for _, arg := range ep.Args {
					if _, err := names.NewParameterName(arg.Name.String()); check(path, err) {
						return
					}
				}
			}
		}
	}
}

func validateReferences(v *validation) {
	for _, unit := range v.units {
		file := unit.File
		used := make(map[names.Namespace]bool)
		for use := range typeUses(file) {
			var failed bool
			schema.Walk(use.Type, func(t schema.Type) bool {
				switch t := t.(type) {
				case schema.LocalReference:
					if _, ok := file.Lookup(t.Name); !ok {
						failed = v.fail(errUnknownLocalReference(file.Path, t.Name))
					}
				case schema.ForeignReference:
					used[t.Namespace] = true
					if _, _, err := unit.Imports.ResolveForeign(t); err != nil {
						var missingNamespace bool
						if lerr, ok := err.(*schema.LookupError); ok {
							missingNamespace = lerr.MissingNamespace
						}
						failed = v.fail(errForeignReference(file.Path, missingNamespace, err))
					}
				}
				return !failed
			})
			if failed {
				return
			}
		}
		for _, imp := range file.Imports {
			if !used[imp.Namespace] {
				v.warn(warnUnusedImport(file.Path, imp.Namespace))
			}
		}
	}
}

func validateUniqueEnumValues(v *validation) {
	for _, unit := range v.units {
		for _, t := range unit.File.Types {
			enum, ok := t.Def.(*schema.EnumDefinition)
			if !ok {
				continue
			}
			seen := make(map[string]bool, len(enum.Values))
			for _, value := range enum.Values {
				if seen[value.Value] {
					if v.fail(errDuplicateEnumValue(unit.File.Path, value.Value)) {
						return
					}
					continue
				}
				seen[value.Value] = true
			}
		}
	}
}

func validateEnumValueFormat(v *validation) {
	for _, unit := range v.units {
		for _, t := range unit.File.Types {
			enum, ok := t.Def.(*schema.EnumDefinition)
			if !ok {
				continue
			}
			for _, value := range enum.Values {
				var err *Error
				switch {
				case value.Value == "UNKNOWN":
					err = errReservedEnumValue(unit.File.Path, t.Name)
				case !enumValueRegexp.MatchString(value.Value):
					err = errEnumValueFormat(unit.File.Path, value.Value)
				}
				if err != nil && v.fail(err) {
					return
				}
			}
		}
	}
}

func validateUniqueFieldNames(v *validation) {
	check := func(path, kind string, fields []schema.Field) bool {
		seen := make(map[string]names.FieldName, len(fields))
		for _, f := range fields {
			key := f.Name.ToCase(names.CamelCase).String()
			if prev, ok := seen[key]; ok {
				if v.fail(errDuplicateFieldName(path, kind, prev, f.Name)) {
					return true
				}
				continue
			}
			seen[key] = f.Name
		}
		return false
	}
	for _, unit := range v.units {
		path := unit.File.Path
		for _, t := range unit.File.Types {
			var stop bool
			switch def := t.Def.(type) {
			case *schema.ObjectDefinition:
				stop = check(path, "ObjectDefinition", def.Fields)
			case *schema.UnionDefinition:
				stop = check(path, "UnionDefinition", def.Variants)
			}
			if stop {
				return
			}
		}
		for _, e := range unit.File.Errors {
			args := slices.Concat(e.Def.SafeArgs, e.Def.UnsafeArgs)
			if check(path, "ErrorDefinition", args) {
				return
			}
		}
	}
}

func validateUnionKeys(v *validation) {
	for _, unit := range v.units {
		for _, t := range unit.File.Types {
			union, ok := t.Def.(*schema.UnionDefinition)
			if !ok {
				continue
			}
			for _, variant := range union.Variants {
				if strings.HasSuffix(variant.Name.String(), "_") && v.fail(errUnionKeyUnderscore(unit.File.Path, variant.Name)) {
					return
				}
			}
		}
	}
}

func validateMapKeys(v *validation) {
	for _, unit := range v.units {
		for use := range typeUses(unit.File) {
			var failed bool
			schema.Walk(use.Type, func(t schema.Type) bool {
				m, ok := t.(schema.Map)
				if ok && !v.isValidMapKey(unit, m.Key) {
					failed = v.fail(errComplexMapKey(unit.File.Path, m.Key.String(), use.Location))
				}
				return !failed
			})
			if failed {
				return
			}
		}
	}
}

// isValidMapKey accepts scalars and references to aliases or enums.
// Unresolved references are accepted, they are reported elsewhere.
func (v *validation) isValidMapKey(unit *Unit, key schema.Type) bool {
	switch key.(type) {
	case schema.Primitive, schema.DateTime, schema.Binary:
		return true
	case schema.Any, schema.External, schema.List, schema.Set, schema.Map, schema.Optional:
		return false
	case schema.LocalReference, schema.ForeignReference:
		_, def, _, ok := v.lookup(unit, key)
		if !ok {
			return true
		}
		switch def.(type) {
		case *schema.AliasDefinition, *schema.EnumDefinition:
			return true
		}
		return false
	}
	panic("unreachable")
}

func validateNoRecursiveTypes(v *validation) {
	for _, unit := range v.units {
		if cycle := findRecursiveType(unit.File); cycle != nil {
			if v.fail(errRecursiveType(unit.File.Path, cycle)) {
				return
			}
		}
	}
}

// findRecursiveType returns the first cycle of direct references between
// objects and aliases, starting from the earliest declared type on it.
// Imports are acyclic, so every cycle lies within one file.
func findRecursiveType(file *schema.SchemaFile) []string {
	edges := make(map[names.TypeName][]names.TypeName)
	isNode := func(name names.TypeName) bool {
		def, ok := file.Lookup(name)
		if !ok {
			return false
		}
		switch def.(type) {
		case *schema.ObjectDefinition, *schema.AliasDefinition:
			return true
		}
		return false
	}
	addEdge := func(from names.TypeName, t schema.Type) {
		if ref, ok := t.(schema.LocalReference); ok && isNode(ref.Name) {
			edges[from] = append(edges[from], ref.Name)
		}
	}
	for _, t := range file.Types {
		switch def := t.Def.(type) {
		case *schema.ObjectDefinition:
			for _, f := range def.Fields {
				addEdge(t.Name, f.Type)
			}
		case *schema.AliasDefinition:
			addEdge(t.Name, def.Aliased)
		}
	}

	done := make(map[names.TypeName]bool)
	var visit func(name names.TypeName, path []names.TypeName) []names.TypeName
	visit = func(name names.TypeName, path []names.TypeName) []names.TypeName {
		if start := slices.Index(path, name); start >= 0 {
			return append(slices.Clone(path[start:]), name)
		}
		if done[name] {
			return nil
		}
		path = append(slices.Clone(path), name)
		for _, next := range edges[name] {
			if cycle := visit(next, path); cycle != nil {
				return cycle
			}
		}
		done[name] = true
		return nil
	}

	for _, t := range file.Types {
		if cycle := visit(t.Name, nil); cycle != nil {
			out := make([]string, len(cycle))
			for ii, name := range cycle {
				out[ii] = name.String()
			}
			return out
		}
	}
	return nil
}

func validateNoNestedOptionals(v *validation) {
	for _, unit := range v.units {
		for use := range typeUses(unit.File) {
			if v.hasNestedOptional(unit, use.Type, false, 0) {
				if v.fail(errNestedOptional(unit.File.Path, use.Owner)) {
					return
				}
			}
		}
	}
}

func (v *validation) hasNestedOptional(unit *Unit, t schema.Type, inOptional bool, depth int) bool {
	if depth > len(v.units)*64 {
		return false
	}
	switch t := t.(type) {
	case schema.Optional:
		if inOptional {
			return true
		}
		return v.hasNestedOptional(unit, t.Item, true, depth+1)
	case schema.LocalReference, schema.ForeignReference:
		_, def, owner, ok := v.lookup(unit, t)
		if !ok {
			return false
		}
		if alias, ok := def.(*schema.AliasDefinition); ok {
			return v.hasNestedOptional(owner, alias.Aliased, inOptional, depth+1)
		}
	}
	return false
}

func validateUniqueNames(v *validation) {
	types := make(map[schema.QualifiedName]bool)
	services := make(map[schema.QualifiedName]bool)
	for _, unit := range v.units {
		file := unit.File
		add := func(name names.TypeName, meta schema.Meta) bool {
			qn := schema.QualifiedName{Package: file.PackageOf(meta), Name: name}
			if types[qn] || services[qn] {
				return v.fail(errDuplicateTypeName(file.Path, qn.String()))
			}
			types[qn] = true
			return false
		}
		for _, t := range file.Types {
			if add(t.Name, t.Def.Metadata()) {
				return
			}
		}
		for _, e := range file.Errors {
			if add(e.Name, e.Def.Meta) {
				return
			}
		}
		for _, s := range file.Services {
			qn := schema.QualifiedName{Package: file.PackageOf(s.Def.Meta), Name: s.Name}
			var err *Error
			switch {
			case services[qn]:
				err = errDuplicateService(file.Path, qn.String())
			case types[qn]:
				err = errDuplicateTypeName(file.Path, qn.String())
			}
			if err != nil {
				if v.fail(err) {
					return
				}
				continue
			}
			services[qn] = true
		}
	}
}
