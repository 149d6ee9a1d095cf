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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"

	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/schema"
	"github.com/palantir/conjure-sub003/syntax"
)

// A resolver loads schema files and the files they import. Each file is
// read and parsed at most once per resolver, keyed by canonical path.
type resolver struct {
	log     zerolog.Logger
	metrics *Metrics

	cache   map[string]*Unit
	onStack map[string]bool
	stack   []string

	// units in post-order, so every file follows the files it imports.
	units []*Unit
	files []string
}

func newResolver(log zerolog.Logger, metrics *Metrics) *resolver {
	return &resolver{
		log:     log,
		metrics: metrics,
		cache:   make(map[string]*Unit),
		onStack: make(map[string]bool),
	}
}

func (r *resolver) resolve(path, importedFrom string) (*Unit, *Error) {
	abs, err := canonicalPath(path)
	if err != nil {
		return nil, errImportNotFound(path, importedFrom, err)
	}
	if r.onStack[abs] {
		start := slices.Index(r.stack, abs)
		cycle := append(slices.Clone(r.stack[start:]), abs)
		return nil, errCyclicImport(cycle)
	}
	if unit, ok := r.cache[abs]; ok {
		return unit, nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errImportNotFound(abs, importedFrom, err)
		}
		return nil, errReadFailed(abs, err)
	}
	r.files = append(r.files, abs)
	r.metrics.fileParsed()
	r.log.Debug().Str("path", abs).Msg("parsing")

	file, err := syntax.ParseFile(abs, src)
	if err != nil {
		return nil, errParseFailed(abs, err)
	}
	if err := checkPackages(file); err != nil {
		return nil, err
	}

	r.onStack[abs] = true
	r.stack = append(r.stack, abs)
	defer func() {
		delete(r.onStack, abs)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	deps := make(map[names.Namespace]*schema.SchemaFile, len(file.Imports))
	for _, imp := range file.Imports {
		depPath := filepath.FromSlash(imp.Path)
		if !filepath.IsAbs(depPath) {
			depPath = filepath.Join(filepath.Dir(abs), depPath)
		}
		dep, err := r.resolve(depPath, abs)
		if err != nil {
			return nil, err
		}
		deps[imp.Namespace] = dep.File
	}

	unit := &Unit{
		File:    file,
		Imports: schema.NewResolvedImports(deps),
	}
	r.cache[abs] = unit
	r.units = append(r.units, unit)
	return unit, nil
}

// checkPackages requires every definition and service to belong to a
// package, either its own or the file's default.
func checkPackages(file *schema.SchemaFile) *Error {
	for _, t := range file.Types {
		if file.PackageOf(t.Def.Metadata()).IsZero() {
			return errMissingPackage(file.Path, t.Name)
		}
	}
	for _, e := range file.Errors {
		if file.PackageOf(e.Def.Meta).IsZero() {
			return errMissingPackage(file.Path, e.Name)
		}
	}
	for _, s := range file.Services {
		if file.PackageOf(s.Def.Meta).IsZero() {
			return errMissingPackage(file.Path, s.Name)
		}
	}
	return nil
}
