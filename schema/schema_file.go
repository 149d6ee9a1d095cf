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
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/palantir/conjure-sub003/names"
)

// A SchemaFile is one parsed source file. Slices keep declaration order.
type SchemaFile struct {
	Path           string
	DefaultPackage names.Package
	Imports        []Import
	Externals      []ExternalImport
	Types          []NamedDefinition
	Errors         []NamedError
	Services       []NamedService
}

// An Import makes the types of another file visible under Namespace.
type Import struct {
	Namespace names.Namespace
	// Path is relative to the importing file's directory.
	Path string
}

// An ExternalImport declares a type provided by the target language.
type ExternalImport struct {
	Name     names.TypeName
	Fallback Type
	Bindings map[string]string
}

func (ext ExternalImport) Type() External {
	return External{
		Name:     ext.Name,
		Fallback: ext.Fallback,
		Bindings: ext.Bindings,
	}
}

type NamedDefinition struct {
	Name names.TypeName
	Def  Definition
}

type NamedError struct {
	Name names.TypeName
	Def  *ErrorDefinition
}

type NamedService struct {
	Name names.TypeName
	Def  *ServiceDefinition
}

// Lookup finds a type or error definition by name.
func (f *SchemaFile) Lookup(name names.TypeName) (Definition, bool) {
	for _, t := range f.Types {
		if t.Name == name {
			return t.Def, true
		}
	}
	for _, e := range f.Errors {
		if e.Name == name {
			return e.Def, true
		}
	}
	return nil, false
}

func (f *SchemaFile) LookupService(name names.TypeName) (*ServiceDefinition, bool) {
	for _, s := range f.Services {
		if s.Name == name {
			return s.Def, true
		}
	}
	return nil, false
}

func (f *SchemaFile) LookupExternal(name names.TypeName) (ExternalImport, bool) {
	for _, ext := range f.Externals {
		if ext.Name == name {
			return ext, true
		}
	}
	return ExternalImport{}, false
}

// PackageOf returns the package a definition belongs to: its own override
// if set, else the file's default package. The result is zero if neither
// is set.
func (f *SchemaFile) PackageOf(meta Meta) names.Package {
	if !meta.Package.IsZero() {
		return meta.Package
	}
	return f.DefaultPackage
}

// A QualifiedName is the globally unique name of a definition.
type QualifiedName struct {
	Package names.Package
	Name    names.TypeName
}

func (qn QualifiedName) String() string {
	if qn.Package.IsZero() {
		return qn.Name.String()
	}
	return qn.Package.String() + "." + qn.Name.String()
}

// ResolvedImports maps each namespace a file imports to the file it names.
// It is built once and never modified.
type ResolvedImports struct {
	files map[names.Namespace]*SchemaFile
}

func NewResolvedImports(files map[names.Namespace]*SchemaFile) *ResolvedImports {
	return &ResolvedImports{files: maps.Clone(files)}
}

func (r *ResolvedImports) Lookup(ns names.Namespace) (*SchemaFile, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.files[ns]
	return f, ok
}

// Namespaces returns the imported namespaces in sorted order.
func (r *ResolvedImports) Namespaces() []names.Namespace {
	if r == nil {
		return nil
	}
	return slices.SortedFunc(maps.Keys(r.files), func(a, b names.Namespace) int {
		return strings.Compare(a.String(), b.String())
	})
}

// ResolveForeign finds the definition a foreign reference names, along with
// the file that defines it.
func (r *ResolvedImports) ResolveForeign(ref ForeignReference) (Definition, *SchemaFile, error) {
	f, ok := r.Lookup(ref.Namespace)
	if !ok {
		return nil, nil, &LookupError{Ref: ref, MissingNamespace: true}
	}
	def, ok := f.Lookup(ref.Name)
	if !ok {
		return nil, nil, &LookupError{Ref: ref}
	}
	return def, f, nil
}

// A LookupError reports a foreign reference that does not resolve.
type LookupError struct {
	Ref ForeignReference
	// MissingNamespace is true if the namespace itself is not imported.
	MissingNamespace bool
}

func (err *LookupError) Error() string {
	if err.MissingNamespace {
		return fmt.Sprintf(
			"Import not found for namespace: %s (in reference %s)",
			err.Ref.Namespace, err.Ref,
		)
	}
	return fmt.Sprintf(
		"Unknown type %s in namespace %s (in reference %s)",
		err.Ref.Name, err.Ref.Namespace, err.Ref,
	)
}
