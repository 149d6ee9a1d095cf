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
	"cmp"
	"slices"

	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/schema"
)

// Normalize returns a copy of file with its declarations in canonical
// order: types and services by name, errors by namespace then name, imports
// by namespace and externals by name. Endpoints keep their declared order.
// The input is not modified, and normalizing twice changes nothing.
func Normalize(file *schema.SchemaFile) *schema.SchemaFile {
	out := *file
	out.Imports = sortedBy(file.Imports, func(imp schema.Import) string {
		return imp.Namespace.String()
	})
	out.Externals = sortedBy(file.Externals, func(ext schema.ExternalImport) string {
		return ext.Name.String()
	})
	out.Types = sortedBy(file.Types, func(t schema.NamedDefinition) string {
		return t.Name.String()
	})
	out.Errors = slices.Clone(file.Errors)
	slices.SortStableFunc(out.Errors, func(a, b schema.NamedError) int {
		return cmp.Or(
			cmp.Compare(a.Def.Namespace.String(), b.Def.Namespace.String()),
			cmp.Compare(a.Name.String(), b.Name.String()),
		)
	})
	out.Services = sortedBy(file.Services, func(s schema.NamedService) string {
		return s.Name.String()
	})
	return &out
}

func sortedBy[T any](items []T, key func(T) string) []T {
	if items == nil {
		return nil
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
	return out
}

// normalizeUnits normalizes every file, pointing each unit's imports at the
// normalized files. units must be in post-order.
func normalizeUnits(units []*Unit) []*Unit {
	normalized := make(map[*schema.SchemaFile]*schema.SchemaFile, len(units))
	out := make([]*Unit, len(units))
	for ii, unit := range units {
		deps := make(map[names.Namespace]*schema.SchemaFile)
		for _, ns := range unit.Imports.Namespaces() {
			dep, _ := unit.Imports.Lookup(ns)
			deps[ns] = normalized[dep]
		}
		file := Normalize(unit.File)
		normalized[unit.File] = file
		out[ii] = &Unit{
			File:    file,
			Imports: schema.NewResolvedImports(deps),
		}
	}
	return out
}
