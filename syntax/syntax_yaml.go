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

package syntax

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/parsec"
	"github.com/palantir/conjure-sub003/schema"
)

const kebabKeyPattern = `^[a-z]+(-[a-z]+)*$`

var kebabKeyRegexp = regexp.MustCompile(kebabKeyPattern)

// ParseFile parses a YAML schema document. The path is recorded in the
// result; imports are left unresolved.
func ParseFile(path string, src []byte) (*schema.SchemaFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, errInvalidYAML(err)
	}
	l := &loader{
		file: &schema.SchemaFile{Path: path},
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return l.file, nil
	}
	if err := l.loadRoot(doc.Content[0]); err != nil {
		return nil, err
	}
	return l.file, nil
}

type loader struct {
	file *schema.SchemaFile
}

type entry struct {
	key     string
	keyNode *yaml.Node
	value   *yaml.Node
}

// resolve follows aliases. A nil node resolves to a null scalar.
func resolve(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nullNode
	}
	for node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

// mapping returns the entries of a mapping node in document order. A null
// node is an empty mapping.
func mapping(node *yaml.Node, what string) ([]entry, error) {
	node = resolve(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errExpectedMapping(node, what)
	}
	entries := make([]entry, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for ii := 0; ii+1 < len(node.Content); ii += 2 {
		key := resolve(node.Content[ii])
		if key.Kind != yaml.ScalarNode {
			return nil, errExpectedScalar(key, "a key of "+what)
		}
		if _, dup := seen[key.Value]; dup {
			return nil, errDuplicateKey(key, key.Value)
		}
		seen[key.Value] = struct{}{}
		entries = append(entries, entry{
			key:     key.Value,
			keyNode: key,
			value:   resolve(node.Content[ii+1]),
		})
	}
	return entries, nil
}

// structure is a mapping whose keys are fixed property names.
type structure struct {
	node    *yaml.Node
	what    string
	entries map[string]entry
}

func newStructure(node *yaml.Node, what string, allowed ...string) (*structure, error) {
	entries, err := mapping(node, what)
	if err != nil {
		return nil, err
	}
	s := &structure{
		node:    resolve(node),
		what:    what,
		entries: make(map[string]entry, len(entries)),
	}
	for _, e := range entries {
		if !kebabKeyRegexp.MatchString(e.key) {
			return nil, errKeyNotKebabCase(e.keyNode, e.key)
		}
		if !slices.Contains(allowed, e.key) {
			return nil, errUnknownKey(e.keyNode, e.key, what)
		}
		s.entries[e.key] = e
	}
	return s, nil
}

func (s *structure) has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// get returns the value of key, or nil if it is absent.
func (s *structure) get(key string) *yaml.Node {
	if e, ok := s.entries[key]; ok {
		return e.value
	}
	return nil
}

func (s *structure) require(key string) (*yaml.Node, error) {
	if e, ok := s.entries[key]; ok && !isNull(e.value) {
		return e.value, nil
	}
	return nil, errMissingKey(s.node, key, s.what)
}

func (s *structure) str(key string) (string, error) {
	node := s.get(key)
	if node == nil {
		return "", nil
	}
	return scalar(node, fmt.Sprintf("'%s' of %s", key, s.what))
}

func (s *structure) pkg(key string) (names.Package, error) {
	node := s.get(key)
	if node == nil {
		return names.Package{}, nil
	}
	if _, err := scalar(node, key); err != nil {
		return names.Package{}, err
	}
	pkg, err := names.NewPackage(node.Value)
	if err != nil {
		return names.Package{}, errInvalidName(node, err)
	}
	return pkg, nil
}

func scalar(node *yaml.Node, what string) (string, error) {
	node = resolve(node)
	if isNull(node) {
		return "", nil
	}
	if node.Kind != yaml.ScalarNode {
		return "", errExpectedScalar(node, what)
	}
	return node.Value, nil
}

func sequence(node *yaml.Node, what string) ([]*yaml.Node, error) {
	node = resolve(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errExpectedSequence(node, what)
	}
	items := make([]*yaml.Node, len(node.Content))
	for ii, item := range node.Content {
		items[ii] = resolve(item)
	}
	return items, nil
}

func (l *loader) loadRoot(node *yaml.Node) error {
	root, err := newStructure(node, "schema file", "types", "services")
	if err != nil {
		return err
	}
	if types := root.get("types"); types != nil {
		if err := l.loadTypes(types); err != nil {
			return err
		}
	}
	if services := root.get("services"); services != nil {
		if err := l.loadServices(services); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) loadTypes(node *yaml.Node) error {
	types, err := newStructure(node, "types",
		"conjure-imports", "imports", "definitions", "default-package")
	if err != nil {
		return err
	}
	if l.file.DefaultPackage, err = types.pkg("default-package"); err != nil {
		return err
	}
	if imports := types.get("conjure-imports"); imports != nil {
		if err := l.loadImports(imports); err != nil {
			return err
		}
	}
	// Externals first, so that references to them can be rewritten as the
	// definitions are loaded.
	if externals := types.get("imports"); externals != nil {
		if err := l.loadExternals(externals); err != nil {
			return err
		}
	}
	if definitions := types.get("definitions"); definitions != nil {
		if err := l.loadDefinitions(definitions); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) loadImports(node *yaml.Node) error {
	entries, err := mapping(node, "conjure-imports")
	if err != nil {
		return err
	}
	for _, e := range entries {
		ns, err := names.NewNamespace(e.key)
		if err != nil {
			return errInvalidName(e.keyNode, err)
		}
		path, err := scalar(e.value, "import path of "+e.key)
		if err != nil {
			return err
		}
		if path == "" {
			return errMissingKey(e.value, "path", "import "+e.key)
		}
		l.file.Imports = append(l.file.Imports, schema.Import{
			Namespace: ns,
			Path:      path,
		})
	}
	return nil
}

func (l *loader) loadExternals(node *yaml.Node) error {
	entries, err := mapping(node, "imports")
	if err != nil {
		return err
	}
	for _, e := range entries {
		name, err := typeName(e.keyNode)
		if err != nil {
			return err
		}
		ext, err := newStructure(e.value, name.String(), "base-type", "external")
		if err != nil {
			return err
		}

		var fallback schema.Type = schema.Any{}
		if baseType := ext.get("base-type"); baseType != nil {
			if fallback, err = parseTypeNode(baseType); err != nil {
				return err
			}
			if !schema.IsBuiltin(fallback) {
				return errInvalidBaseType(baseType, name.String())
			}
		}

		bindingsNode, err := ext.require("external")
		if err != nil {
			return err
		}
		bindings, err := mapping(bindingsNode, "external of "+name.String())
		if err != nil {
			return err
		}
		ei := schema.ExternalImport{
			Name:     name,
			Fallback: fallback,
			Bindings: make(map[string]string, len(bindings)),
		}
		for _, b := range bindings {
			if ei.Bindings[b.key], err = scalar(b.value, b.key); err != nil {
				return err
			}
		}
		l.file.Externals = append(l.file.Externals, ei)
	}
	return nil
}

func (l *loader) loadDefinitions(node *yaml.Node) error {
	defs, err := newStructure(node, "definitions", "default-package", "objects", "errors")
	if err != nil {
		return err
	}
	if defs.has("default-package") {
		if !l.file.DefaultPackage.IsZero() {
			return errConflictingDefaultPackage(defs.entries["default-package"].keyNode)
		}
		if l.file.DefaultPackage, err = defs.pkg("default-package"); err != nil {
			return err
		}
	}

	objects, err := mapping(defs.get("objects"), "objects")
	if err != nil {
		return err
	}
	for _, e := range objects {
		name, err := typeName(e.keyNode)
		if err != nil {
			return err
		}
		def, err := l.loadObject(name, e.value)
		if err != nil {
			return err
		}
		l.file.Types = append(l.file.Types, schema.NamedDefinition{Name: name, Def: def})
	}

	errs, err := mapping(defs.get("errors"), "errors")
	if err != nil {
		return err
	}
	for _, e := range errs {
		name, err := typeName(e.keyNode)
		if err != nil {
			return err
		}
		def, err := l.loadError(name, e.value)
		if err != nil {
			return err
		}
		l.file.Errors = append(l.file.Errors, schema.NamedError{Name: name, Def: def})
	}
	return nil
}

func (l *loader) loadObject(name names.TypeName, node *yaml.Node) (schema.Definition, error) {
	entries, err := mapping(node, name.String())
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(entries))
	for ii, e := range entries {
		keys[ii] = e.key
	}

	var kind string
	for _, k := range []string{"fields", "values", "alias", "union", "namespace"} {
		if slices.Contains(keys, k) {
			kind = k
			break
		}
	}

	switch kind {
	case "fields":
		s, err := newStructure(node, name.String(), "fields", "package", "docs")
		if err != nil {
			return nil, err
		}
		meta, err := loadMeta(s)
		if err != nil {
			return nil, err
		}
		fields, err := l.loadFields(s.get("fields"), "fields of "+name.String())
		if err != nil {
			return nil, err
		}
		return &schema.ObjectDefinition{Meta: meta, Fields: fields}, nil
	case "values":
		s, err := newStructure(node, name.String(), "values", "package", "docs")
		if err != nil {
			return nil, err
		}
		meta, err := loadMeta(s)
		if err != nil {
			return nil, err
		}
		values, err := loadEnumValues(s.get("values"))
		if err != nil {
			return nil, err
		}
		return &schema.EnumDefinition{Meta: meta, Values: values}, nil
	case "alias":
		s, err := newStructure(node, name.String(), "alias", "package", "docs")
		if err != nil {
			return nil, err
		}
		meta, err := loadMeta(s)
		if err != nil {
			return nil, err
		}
		aliasNode, err := s.require("alias")
		if err != nil {
			return nil, err
		}
		aliased, err := l.typeExpr(aliasNode)
		if err != nil {
			return nil, err
		}
		return &schema.AliasDefinition{Meta: meta, Aliased: aliased}, nil
	case "union":
		s, err := newStructure(node, name.String(), "union", "package", "docs")
		if err != nil {
			return nil, err
		}
		meta, err := loadMeta(s)
		if err != nil {
			return nil, err
		}
		variants, err := l.loadFields(s.get("union"), "union "+name.String())
		if err != nil {
			return nil, err
		}
		return &schema.UnionDefinition{Meta: meta, Variants: variants}, nil
	case "namespace":
		return nil, errMisplacedError(resolve(node), name.String())
	}
	return nil, errUnrecognizedDefinition(resolve(node), name.String())
}

func loadMeta(s *structure) (schema.Meta, error) {
	pkg, err := s.pkg("package")
	if err != nil {
		return schema.Meta{}, err
	}
	docs, err := s.str("docs")
	if err != nil {
		return schema.Meta{}, err
	}
	return schema.Meta{Package: pkg, Docs: docs}, nil
}

func (l *loader) loadFields(node *yaml.Node, what string) ([]schema.Field, error) {
	entries, err := mapping(node, what)
	if err != nil {
		return nil, err
	}
	fields := make([]schema.Field, 0, len(entries))
	for _, e := range entries {
		name, err := names.NewFieldName(e.key)
		if err != nil {
			return nil, errInvalidName(e.keyNode, err)
		}
		field := schema.Field{Name: name}
		if e.value.Kind == yaml.ScalarNode && !isNull(e.value) {
			if field.Type, err = l.typeExpr(e.value); err != nil {
				return nil, err
			}
			fields = append(fields, field)
			continue
		}
		s, err := newStructure(e.value, e.key, "type", "docs", "deprecated")
		if err != nil {
			return nil, err
		}
		typeNode, err := s.require("type")
		if err != nil {
			return nil, err
		}
		if field.Type, err = l.typeExpr(typeNode); err != nil {
			return nil, err
		}
		if field.Docs, err = s.str("docs"); err != nil {
			return nil, err
		}
		if field.Deprecated, err = s.str("deprecated"); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func loadEnumValues(node *yaml.Node) ([]schema.EnumValue, error) {
	items, err := sequence(node, "values")
	if err != nil {
		return nil, err
	}
	values := make([]schema.EnumValue, 0, len(items))
	for _, item := range items {
		if item.Kind == yaml.ScalarNode {
			values = append(values, schema.EnumValue{Value: item.Value})
			continue
		}
		s, err := newStructure(item, "enum value", "value", "docs", "deprecated")
		if err != nil {
			return nil, err
		}
		valueNode, err := s.require("value")
		if err != nil {
			return nil, err
		}
		var v schema.EnumValue
		if v.Value, err = scalar(valueNode, "value"); err != nil {
			return nil, err
		}
		if v.Docs, err = s.str("docs"); err != nil {
			return nil, err
		}
		if v.Deprecated, err = s.str("deprecated"); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (l *loader) loadError(name names.TypeName, node *yaml.Node) (*schema.ErrorDefinition, error) {
	s, err := newStructure(node, name.String(),
		"namespace", "code", "package", "docs", "safe-args", "unsafe-args")
	if err != nil {
		return nil, err
	}
	meta, err := loadMeta(s)
	if err != nil {
		return nil, err
	}
	def := &schema.ErrorDefinition{Meta: meta}

	nsNode, err := s.require("namespace")
	if err != nil {
		return nil, err
	}
	if def.Namespace, err = names.NewErrorNamespace(nsNode.Value); err != nil {
		return nil, errInvalidName(nsNode, err)
	}
	codeNode, err := s.require("code")
	if err != nil {
		return nil, err
	}
	if def.Code, err = names.ParseErrorCode(codeNode.Value); err != nil {
		return nil, errInvalidName(codeNode, err)
	}
	if def.SafeArgs, err = l.loadFields(s.get("safe-args"), "safe-args of "+name.String()); err != nil {
		return nil, err
	}
	if def.UnsafeArgs, err = l.loadFields(s.get("unsafe-args"), "unsafe-args of "+name.String()); err != nil {
		return nil, err
	}
	return def, nil
}

func (l *loader) loadServices(node *yaml.Node) error {
	entries, err := mapping(node, "services")
	if err != nil {
		return err
	}
	for _, e := range entries {
		name, err := typeName(e.keyNode)
		if err != nil {
			return err
		}
		def, err := l.loadService(name, e.value)
		if err != nil {
			return err
		}
		l.file.Services = append(l.file.Services, schema.NamedService{Name: name, Def: def})
	}
	return nil
}

func (l *loader) loadService(name names.TypeName, node *yaml.Node) (*schema.ServiceDefinition, error) {
	s, err := newStructure(node, name.String(),
		"name", "package", "docs", "default-auth", "base-path", "endpoints")
	if err != nil {
		return nil, err
	}
	meta, err := loadMeta(s)
	if err != nil {
		return nil, err
	}
	def := &schema.ServiceDefinition{Meta: meta, BasePath: "/"}
	if basePath := s.get("base-path"); basePath != nil {
		if def.BasePath, err = scalar(basePath, "base-path"); err != nil {
			return nil, err
		}
	}
	if authNode := s.get("default-auth"); authNode != nil {
		if def.DefaultAuth, err = parseAuth(authNode); err != nil {
			return nil, err
		}
	}

	endpoints, err := mapping(s.get("endpoints"), "endpoints of "+name.String())
	if err != nil {
		return nil, err
	}
	for _, e := range endpoints {
		epName, err := names.NewEndpointName(e.key)
		if err != nil {
			return nil, errInvalidName(e.keyNode, err)
		}
		ep, err := l.loadEndpoint(def.BasePath, epName, e.value)
		if err != nil {
			return nil, err
		}
		def.Endpoints = append(def.Endpoints, ep)
	}
	return def, nil
}

func (l *loader) loadEndpoint(basePath string, name names.EndpointName, node *yaml.Node) (schema.Endpoint, error) {
	ep := schema.Endpoint{Name: name}
	s, err := newStructure(node, name.String(),
		"http", "auth", "args", "returns", "docs", "deprecated", "markers", "tags", "errors")
	if err != nil {
		return ep, err
	}

	httpNode, err := s.require("http")
	if err != nil {
		return ep, err
	}
	line, err := parsec.Parse(requestLineGrammar, httpNode.Value)
	if err != nil || httpNode.Kind != yaml.ScalarNode {
		return ep, errInvalidRequestLine(httpNode)
	}
	ep.Method = line.Key
	ep.Path = JoinPath(basePath, line.Value)

	if authNode := s.get("auth"); authNode != nil {
		auth, err := parseAuth(authNode)
		if err != nil {
			return ep, err
		}
		ep.Auth = &auth
	}
	if ep.Docs, err = s.str("docs"); err != nil {
		return ep, err
	}
	if ep.Deprecated, err = s.str("deprecated"); err != nil {
		return ep, err
	}
	if returns := s.get("returns"); returns != nil && !isNull(returns) {
		if ep.Returns, err = l.typeExpr(returns); err != nil {
			return ep, err
		}
	}
	if ep.Markers, err = l.typeList(s.get("markers"), "markers"); err != nil {
		return ep, err
	}
	tags, err := sequence(s.get("tags"), "tags")
	if err != nil {
		return ep, err
	}
	for _, tag := range tags {
		value, err := scalar(tag, "tag")
		if err != nil {
			return ep, err
		}
		if !slices.Contains(ep.Tags, value) {
			ep.Tags = append(ep.Tags, value)
		}
	}
	if ep.Args, err = l.loadArgs(ep.Path, s.get("args")); err != nil {
		return ep, err
	}
	if ep.Errors, err = l.loadEndpointErrors(s.get("errors")); err != nil {
		return ep, err
	}
	return ep, nil
}

func (l *loader) loadArgs(path string, node *yaml.Node) ([]schema.Argument, error) {
	entries, err := mapping(node, "args")
	if err != nil {
		return nil, err
	}
	pathParams := PathParams(path)
	args := make([]schema.Argument, 0, len(entries))
	for _, e := range entries {
		name, err := names.NewParameterName(e.key)
		if err != nil {
			return nil, errInvalidName(e.keyNode, err)
		}
		arg := schema.Argument{Name: name}
		paramType := "auto"
		if e.value.Kind == yaml.ScalarNode && !isNull(e.value) {
			if arg.Type, err = l.typeExpr(e.value); err != nil {
				return nil, err
			}
		} else {
			s, err := newStructure(e.value, e.key,
				"type", "docs", "param-id", "param-type", "markers")
			if err != nil {
				return nil, err
			}
			typeNode, err := s.require("type")
			if err != nil {
				return nil, err
			}
			if arg.Type, err = l.typeExpr(typeNode); err != nil {
				return nil, err
			}
			if arg.Docs, err = s.str("docs"); err != nil {
				return nil, err
			}
			if arg.ParamID, err = s.str("param-id"); err != nil {
				return nil, err
			}
			if s.has("param-type") {
				if paramType, err = s.str("param-type"); err != nil {
					return nil, err
				}
			}
			if arg.Markers, err = l.typeList(s.get("markers"), "markers"); err != nil {
				return nil, err
			}
		}

		switch strings.ToLower(paramType) {
		case "auto":
			if slices.Contains(pathParams, e.key) {
				arg.ParamType = schema.ParamPath
			} else {
				arg.ParamType = schema.ParamBody
			}
		case "path":
			arg.ParamType = schema.ParamPath
		case "query":
			arg.ParamType = schema.ParamQuery
		case "header":
			arg.ParamType = schema.ParamHeader
		case "body":
			arg.ParamType = schema.ParamBody
		default:
			return nil, errInvalidParamType(resolve(e.value))
		}
		if arg.ParamID == "" && arg.ParamType != schema.ParamBody {
			arg.ParamID = e.key
		}
		args = append(args, arg)
	}
	return args, nil
}

func (l *loader) loadEndpointErrors(node *yaml.Node) ([]schema.EndpointError, error) {
	items, err := sequence(node, "errors")
	if err != nil {
		return nil, err
	}
	out := make([]schema.EndpointError, 0, len(items))
	for _, item := range items {
		var epErr schema.EndpointError
		if item.Kind == yaml.ScalarNode {
			if epErr.Error, err = l.typeExpr(item); err != nil {
				return nil, err
			}
			out = append(out, epErr)
			continue
		}
		s, err := newStructure(item, "endpoint error", "error", "docs")
		if err != nil {
			return nil, err
		}
		errNode, err := s.require("error")
		if err != nil {
			return nil, err
		}
		if epErr.Error, err = l.typeExpr(errNode); err != nil {
			return nil, err
		}
		if epErr.Docs, err = s.str("docs"); err != nil {
			return nil, err
		}
		out = append(out, epErr)
	}
	return out, nil
}

func (l *loader) typeList(node *yaml.Node, what string) ([]schema.Type, error) {
	items, err := sequence(node, what)
	if err != nil {
		return nil, err
	}
	types := make([]schema.Type, 0, len(items))
	for _, item := range items {
		t, err := l.typeExpr(item)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// typeExpr parses a type expression, replacing references to external
// imports with [schema.External].
func (l *loader) typeExpr(node *yaml.Node) (schema.Type, error) {
	t, err := parseTypeNode(node)
	if err != nil {
		return nil, err
	}
	if len(l.file.Externals) == 0 {
		return t, nil
	}
	return schema.Rewrite(t, func(t schema.Type) schema.Type {
		if ref, ok := t.(schema.LocalReference); ok {
			if ext, ok := l.file.LookupExternal(ref.Name); ok {
				return ext.Type()
			}
		}
		return t
	}), nil
}

func parseTypeNode(node *yaml.Node) (schema.Type, error) {
	node = resolve(node)
	if node.Kind != yaml.ScalarNode || isNull(node) {
		return nil, errExpectedScalar(node, "a type")
	}
	t, err := ParseType(node.Value)
	if err != nil {
		return nil, errInvalidTypeExpr(node, err)
	}
	return t, nil
}

func typeName(node *yaml.Node) (names.TypeName, error) {
	name, err := names.NewTypeName(node.Value)
	if err != nil {
		return names.TypeName{}, errInvalidName(node, err)
	}
	return name, nil
}

var nullNode = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

var requestLineGrammar = parsec.KeyValue(
	parsec.RawString("an HTTP method", func(r rune) bool { return 'A' <= r && r <= 'Z' }, nil),
	parsec.RawString("whitespace", isSpace, nil),
	parsec.RawString("a path", func(r rune) bool { return !isSpace(r) }, nil),
)

func constant[T any](v T) parsec.Parser[T] {
	return func(*parsec.Cursor) (T, error) {
		return v, nil
	}
}

var authGrammar = parsec.Dispatch("an auth type", map[string]parsec.Parser[schema.Auth]{
	"none":   constant(schema.Auth{Kind: schema.AuthNone}),
	"header": constant(schema.Auth{Kind: schema.AuthHeader}),
	"cookie": parsec.Apply(
		parsec.Or("a cookie name",
			parsec.Prefix(parsec.Expect(":"), parsec.RawString("a cookie name", func(r rune) bool {
				return !isSpace(r)
			}, nil)),
			constant(""),
		),
		func(cookie string) (schema.Auth, error) {
			if cookie == "" {
				return schema.Auth{}, errCookieNameMissing
			}
			return schema.Auth{Kind: schema.AuthCookie, Cookie: cookie}, nil
		},
	),
}, nil)

func parseAuth(node *yaml.Node) (schema.Auth, error) {
	value, err := scalar(node, "auth")
	if err != nil {
		return schema.Auth{}, err
	}
	auth, err := parsec.Parse(authGrammar, value)
	if err != nil {
		return schema.Auth{}, errInvalidAuth(resolve(node), err)
	}
	return auth, nil
}
