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

// Package schematext renders a schema file as stable, line-oriented text,
// for golden tests and debugging.
package schematext

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/palantir/conjure-sub003/schema"
)

func Encode(file *schema.SchemaFile) string {
	var buf strings.Builder
	EncodeTo(file, &buf)
	return buf.String()
}

// EncodeFiles renders each file under a header naming it, with a blank
// line between files.
func EncodeFiles(files []*schema.SchemaFile) string {
	var buf strings.Builder
	for ii, file := range files {
		if ii > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "# %s\n", filepath.Base(file.Path))
		EncodeTo(file, &buf)
	}
	return buf.String()
}

func EncodeTo(file *schema.SchemaFile, w io.Writer) error {
	e := encoder{w: w}
	e.visitFile(file)
	return e.err
}

type encoder struct {
	w      io.Writer
	indent int
	err    error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	if indent := strings.Repeat("\t", e.indent); indent != "" {
		if _, err := io.WriteString(e.w, indent); err != nil {
			e.err = err
			return
		}
	}
	if _, err := io.WriteString(e.w, s); err != nil {
		e.err = err
		return
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		e.err = err
		return
	}
}

func (e *encoder) linef(format string, a ...any) {
	e.line(fmt.Sprintf(format, a...))
}

func (e *encoder) block(name string, body func()) {
	e.linef("%s {", name)
	e.indent += 1
	body()
	e.indent -= 1
	e.line("}")
}

// optional writes a quoted field only when value is not empty.
func (e *encoder) optional(name, value string) {
	if value != "" {
		e.linef("%s = %s", name, quote(value))
	}
}

func (e *encoder) visitFile(file *schema.SchemaFile) {
	e.optional("default_package", file.DefaultPackage.String())
	for _, imp := range file.Imports {
		e.block("import", func() {
			e.linef("namespace = %s", quote(imp.Namespace.String()))
			e.linef("path = %s", quote(imp.Path))
		})
	}
	for _, ext := range file.Externals {
		e.block("external", func() {
			e.linef("name = %s", quote(ext.Name.String()))
			e.linef("fallback = %s", quote(ext.Fallback.String()))
			for _, lang := range slices.Sorted(maps.Keys(ext.Bindings)) {
				e.block("binding", func() {
					e.linef("language = %s", quote(lang))
					e.linef("name = %s", quote(ext.Bindings[lang]))
				})
			}
		})
	}
	for _, t := range file.Types {
		e.block("type", func() {
			e.linef("name = %s", quote(t.Name.String()))
			e.linef("kind = .%s", schema.DefinitionKind(t.Def))
			e.visitMeta(t.Def.Metadata())
			e.visitDefinition(t.Def)
		})
	}
	for _, er := range file.Errors {
		e.block("error", func() {
			e.linef("name = %s", quote(er.Name.String()))
			e.visitMeta(er.Def.Meta)
			e.visitDefinition(er.Def)
		})
	}
	for _, svc := range file.Services {
		e.block("service", func() {
			e.linef("name = %s", quote(svc.Name.String()))
			e.visitMeta(svc.Def.Meta)
			e.linef("base_path = %s", quote(svc.Def.BasePath))
			e.linef("default_auth = %s", quote(svc.Def.DefaultAuth.String()))
			for _, ep := range svc.Def.Endpoints {
				e.visitEndpoint(&ep)
			}
		})
	}
}

func (e *encoder) visitMeta(meta schema.Meta) {
	e.optional("package", meta.Package.String())
	e.optional("docs", meta.Docs)
}

func (e *encoder) visitDefinition(def schema.Definition) {
	switch def := def.(type) {
	case *schema.ObjectDefinition:
		e.visitFields("field", def.Fields)
	case *schema.UnionDefinition:
		e.visitFields("variant", def.Variants)
	case *schema.AliasDefinition:
		e.linef("aliased = %s", quote(def.Aliased.String()))
	case *schema.EnumDefinition:
		for _, value := range def.Values {
			if value.Docs == "" && value.Deprecated == "" {
				e.linef("value = %s", quote(value.Value))
				continue
			}
			e.block("value", func() {
				e.linef("name = %s", quote(value.Value))
				e.optional("docs", value.Docs)
				e.optional("deprecated", value.Deprecated)
			})
		}
	case *schema.ErrorDefinition:
		e.linef("namespace = %s", quote(def.Namespace.String()))
		e.linef("code = .%s", def.Code)
		e.visitFields("safe_arg", def.SafeArgs)
		e.visitFields("unsafe_arg", def.UnsafeArgs)
	default:
		panic("unreachable")
	}
}

func (e *encoder) visitFields(kind string, fields []schema.Field) {
	for _, f := range fields {
		e.block(kind, func() {
			e.linef("name = %s", quote(f.Name.String()))
			e.linef("type = %s", quote(f.Type.String()))
			e.optional("docs", f.Docs)
			e.optional("deprecated", f.Deprecated)
		})
	}
}

func (e *encoder) visitEndpoint(ep *schema.Endpoint) {
	e.block("endpoint", func() {
		e.linef("name = %s", quote(ep.Name.String()))
		e.linef("http = %s", quote(ep.Method+" "+ep.Path))
		if ep.Auth != nil {
			e.linef("auth = %s", quote(ep.Auth.String()))
		}
		for _, arg := range ep.Args {
			e.block("arg", func() {
				e.linef("name = %s", quote(arg.Name.String()))
				e.linef("type = %s", quote(arg.Type.String()))
				e.linef("param_type = .%s", arg.ParamType)
				e.optional("param_id", arg.ParamID)
				e.optional("docs", arg.Docs)
				for _, marker := range arg.Markers {
					e.linef("marker = %s", quote(marker.String()))
				}
			})
		}
		if ep.Returns != nil {
			e.linef("returns = %s", quote(ep.Returns.String()))
		}
		e.optional("docs", ep.Docs)
		e.optional("deprecated", ep.Deprecated)
		for _, marker := range ep.Markers {
			e.linef("marker = %s", quote(marker.String()))
		}
		for _, tag := range ep.Tags {
			e.linef("tag = %s", quote(tag))
		}
		for _, epErr := range ep.Errors {
			if epErr.Docs == "" {
				e.linef("error = %s", quote(epErr.Error.String()))
				continue
			}
			e.block("error", func() {
				e.linef("type = %s", quote(epErr.Error.String()))
				e.optional("docs", epErr.Docs)
			})
		}
	})
}

func quote(text string) string {
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range text {
		if c == '\\' || c == '"' {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if c == '\t' {
			buf.WriteString("\\t")
			continue
		}
		if c == '\n' {
			buf.WriteString("\\n")
			continue
		}
		if c < 0x20 || c == 0x7F {
			fmt.Fprintf(&buf, "\\x%02X", c)
			continue
		}
		buf.WriteRune(c)
	}
	buf.WriteByte('"')
	return buf.String()
}
