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

package main

import (
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/palantir/conjure-sub003/codegen"
	"github.com/palantir/conjure-sub003/encoding/irjson"
)

const outputFileName = "conjure.txt"

func main() {
	args := os.Args[1:]
	if len(args) != 2 {
		log.Fatalf("usage: %s IR_FILE OUTPUT_DIR", os.Args[0])
	}
	fp, err := os.Open(args[0])
	if err != nil {
		log.Fatal(err)
	}
	ir, err := irjson.Read(fp)
	fp.Close()
	if err != nil {
		log.Fatalf("Read(%q): %v", args[0], err)
	}

	resp := generate(&codegen.Request{IR: ir})
	if resp.Error != "" {
		log.Fatal(resp.Error)
	}
	paths, err := codegen.WriteOutputs(args[1], resp.OutputFiles)
	if err != nil {
		log.Fatal(err)
	}
	for _, path := range paths {
		log.Printf("wrote %s", path)
	}
}

// generate renders one text file per package of the request's IR.
func generate(req *codegen.Request) *codegen.Response {
	g, err := newGenerator(req.Options)
	if err != nil {
		return &codegen.Response{Error: err.Error()}
	}
	doc, err := irjson.Decode(req.IR)
	if err != nil {
		return &codegen.Response{Error: err.Error()}
	}
	return &codegen.Response{OutputFiles: g.emitDocument(doc)}
}

type generator struct {
	header string
	docs   bool
	pkg    string
	out    *strings.Builder
}

func newGenerator(options map[string]string) (*generator, error) {
	g := &generator{
		header: "Generated by conjure-codegen-text. DO NOT EDIT.",
		docs:   true,
	}
	for _, key := range slices.Sorted(maps.Keys(options)) {
		value := options[key]
		switch key {
		case "header":
			g.header = value
		case "docs":
			docs, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid value for option docs: %q", value)
			}
			g.docs = docs
		default:
			return nil, fmt.Errorf("unsupported option: %s", key)
		}
	}
	return g, nil
}

type pkgContents struct {
	types    []irjson.TypeDefinition
	errors   []irjson.ErrorDefinition
	services []irjson.ServiceDefinition
}

func (g *generator) emitDocument(doc *irjson.Document) []codegen.OutputFile {
	byPackage := make(map[string]*pkgContents)
	get := func(pkg string) *pkgContents {
		if c, ok := byPackage[pkg]; ok {
			return c
		}
		c := &pkgContents{}
		byPackage[pkg] = c
		return c
	}
	for _, def := range doc.Types {
		c := get(typeDefName(def).Package)
		c.types = append(c.types, def)
	}
	for _, def := range doc.Errors {
		c := get(def.ErrorName.Package)
		c.errors = append(c.errors, def)
	}
	for _, def := range doc.Services {
		c := get(def.ServiceName.Package)
		c.services = append(c.services, def)
	}

	var files []codegen.OutputFile
	for _, pkg := range slices.Sorted(maps.Keys(byPackage)) {
		g.pkg = pkg
		g.out = &strings.Builder{}
		g.emitPackage(byPackage[pkg])
		path := append(strings.Split(pkg, "."), outputFileName)
		files = append(files, codegen.OutputFile{Path: path, Content: g.out.String()})
	}
	return files
}

func typeDefName(def irjson.TypeDefinition) irjson.TypeName {
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

func (g *generator) linef(indent int, format string, a ...any) {
	g.out.WriteString(strings.Repeat("\t", indent))
	fmt.Fprintf(g.out, format, a...)
	g.out.WriteByte('\n')
}

func (g *generator) emitDocs(indent int, docs string) {
	if !g.docs || docs == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(docs, "\n"), "\n") {
		g.linef(indent, "// %s", line)
	}
}

func (g *generator) emitPackage(c *pkgContents) {
	if g.header != "" {
		g.linef(0, "// %s", g.header)
	}
	g.linef(0, "package %s", g.pkg)
	for _, def := range c.types {
		g.out.WriteByte('\n')
		g.emitType(def)
	}
	for _, def := range c.errors {
		g.out.WriteByte('\n')
		g.emitDocs(0, def.Docs)
		g.linef(0, "error %s:%s %s {", def.Namespace, def.Code, def.ErrorName.Name)
		g.emitFields("safe ", def.SafeArgs)
		g.emitFields("unsafe ", def.UnsafeArgs)
		g.linef(0, "}")
	}
	for _, def := range c.services {
		g.out.WriteByte('\n')
		g.emitService(def)
	}
}

func (g *generator) emitType(def irjson.TypeDefinition) {
	switch def.Type {
	case "object":
		g.emitDocs(0, def.Object.Docs)
		g.linef(0, "object %s {", def.Object.TypeName.Name)
		g.emitFields("", def.Object.Fields)
		g.linef(0, "}")
	case "union":
		g.emitDocs(0, def.Union.Docs)
		g.linef(0, "union %s {", def.Union.TypeName.Name)
		g.emitFields("", def.Union.Union)
		g.linef(0, "}")
	case "enum":
		g.emitDocs(0, def.Enum.Docs)
		g.linef(0, "enum %s {", def.Enum.TypeName.Name)
		for _, value := range def.Enum.Values {
			g.emitDocs(1, value.Docs)
			if value.Deprecated != "" {
				g.linef(1, "%s // deprecated: %s", value.Value, value.Deprecated)
				continue
			}
			g.linef(1, "%s", value.Value)
		}
		g.linef(0, "}")
	case "alias":
		g.emitDocs(0, def.Alias.Docs)
		g.linef(0, "alias %s = %s", def.Alias.TypeName.Name, g.typeString(def.Alias.Alias))
	default:
		panic("unreachable")
	}
}

func (g *generator) emitFields(prefix string, fields []irjson.FieldDefinition) {
	for _, field := range fields {
		g.emitDocs(1, field.Docs)
		line := fmt.Sprintf("%s%s: %s", prefix, field.FieldName, g.typeString(field.Type))
		if field.Deprecated != "" {
			line += " // deprecated: " + field.Deprecated
		}
		g.linef(1, "%s", line)
	}
}

func (g *generator) emitService(def irjson.ServiceDefinition) {
	g.emitDocs(0, def.Docs)
	g.linef(0, "service %s {", def.ServiceName.Name)
	for _, ep := range def.Endpoints {
		g.emitDocs(1, ep.Docs)
		args := make([]string, len(ep.Args))
		for ii, arg := range ep.Args {
			args[ii] = fmt.Sprintf("%s: %s [%s]", arg.ArgName, g.typeString(arg.Type), paramString(arg.ParamType))
		}
		line := fmt.Sprintf("%s %s %s(%s)", ep.HTTPMethod, ep.HTTPPath, ep.EndpointName, strings.Join(args, ", "))
		if ep.Returns != nil {
			line += " -> " + g.typeString(*ep.Returns)
		}
		if ep.Auth != nil {
			line += " auth=" + ep.Auth.Type
		}
		for _, epErr := range ep.Errors {
			line += " throws " + g.nameString(epErr.Error)
		}
		g.linef(1, "%s", line)
	}
	g.linef(0, "}")
}

func paramString(p irjson.ParameterType) string {
	switch p.Type {
	case "body", "path":
		return p.Type
	case "header":
		return "header " + p.Header.ParamID
	case "query":
		return "query " + p.Query.ParamID
	}
	panic("unreachable")
}

// nameString qualifies name with its package unless it is in the package
// being generated.
func (g *generator) nameString(name irjson.TypeName) string {
	if name.Package == g.pkg || name.Package == "" {
		return name.Name
	}
	return name.Package + "." + name.Name
}

func (g *generator) typeString(t irjson.Type) string {
	switch t.Type {
	case "primitive":
		return t.Primitive
	case "optional":
		return "optional<" + g.typeString(t.Optional.ItemType) + ">"
	case "list":
		return "list<" + g.typeString(t.List.ItemType) + ">"
	case "set":
		return "set<" + g.typeString(t.Set.ItemType) + ">"
	case "map":
		return "map<" + g.typeString(t.Map.KeyType) + ", " + g.typeString(t.Map.ValueType) + ">"
	case "reference":
		return g.nameString(*t.Reference)
	case "external":
		return "external " + g.nameString(t.External.ExternalReference) + " (" + g.typeString(t.External.Fallback) + ")"
	}
	panic("unreachable")
}
