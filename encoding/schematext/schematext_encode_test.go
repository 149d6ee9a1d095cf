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

package schematext_test

import (
	"errors"
	"testing"

	"github.com/palantir/conjure-sub003/encoding/schematext"
	"github.com/palantir/conjure-sub003/internal/testutil"
	"github.com/palantir/conjure-sub003/names"
	"github.com/palantir/conjure-sub003/schema"
)

func TestEncode(t *testing.T) {
	file := &schema.SchemaFile{
		DefaultPackage: names.MustPackage("com.example"),
		Imports: []schema.Import{
			{Namespace: names.MustNamespace("common"), Path: "common.yml"},
		},
		Externals: []schema.ExternalImport{{
			Name:     names.MustTypeName("Long"),
			Fallback: schema.SafeLong,
			Bindings: map[string]string{"java": "java.lang.Long"},
		}},
		Types: []schema.NamedDefinition{
			{
				Name: names.MustTypeName("Item"),
				Def: &schema.ObjectDefinition{
					Meta: schema.Meta{Docs: "An item.\n"},
					Fields: []schema.Field{
						{Name: names.MustFieldName("tags"), Type: schema.Set{Item: schema.String}},
						{
							Name:       names.MustFieldName("owner"),
							Type:       schema.ForeignReference{Namespace: names.MustNamespace("common"), Name: names.MustTypeName("User")},
							Deprecated: "use \"ownerId\"",
						},
					},
				},
			},
			{
				Name: names.MustTypeName("Color"),
				Def: &schema.EnumDefinition{
					Values: []schema.EnumValue{
						{Value: "RED"},
						{Value: "GREEN", Docs: "Not red."},
					},
				},
			},
		},
		Errors: []schema.NamedError{{
			Name: names.MustTypeName("ItemNotFound"),
			Def: &schema.ErrorDefinition{
				Namespace: names.MustErrorNamespace("Example"),
				Code:      names.NotFound,
				SafeArgs: []schema.Field{
					{Name: names.MustFieldName("itemId"), Type: schema.UUID},
				},
			},
		}},
		Services: []schema.NamedService{{
			Name: names.MustTypeName("ItemService"),
			Def: &schema.ServiceDefinition{
				BasePath:    "/items",
				DefaultAuth: schema.Auth{Kind: schema.AuthHeader},
				Endpoints: []schema.Endpoint{{
					Name:   names.MustEndpointName("getItem"),
					Method: "GET",
					Path:   "/items/{itemId}",
					Auth:   &schema.Auth{Kind: schema.AuthCookie, Cookie: "TOKEN"},
					Args: []schema.Argument{{
						Name:      names.MustParameterName("itemId"),
						Type:      schema.UUID,
						ParamType: schema.ParamPath,
						ParamID:   "itemId",
					}},
					Returns: schema.Optional{Item: schema.LocalReference{Name: names.MustTypeName("Item")}},
					Tags:    []string{"read"},
					Errors: []schema.EndpointError{
						{Error: schema.LocalReference{Name: names.MustTypeName("ItemNotFound")}},
					},
				}},
			},
		}},
	}

	expect := `default_package = "com.example"
import {
	namespace = "common"
	path = "common.yml"
}
external {
	name = "Long"
	fallback = "safelong"
	binding {
		language = "java"
		name = "java.lang.Long"
	}
}
type {
	name = "Item"
	kind = .object
	docs = "An item.\n"
	field {
		name = "tags"
		type = "set<string>"
	}
	field {
		name = "owner"
		type = "common.User"
		deprecated = "use \"ownerId\""
	}
}
type {
	name = "Color"
	kind = .enum
	value = "RED"
	value {
		name = "GREEN"
		docs = "Not red."
	}
}
error {
	name = "ItemNotFound"
	namespace = "Example"
	code = .NOT_FOUND
	safe_arg {
		name = "itemId"
		type = "uuid"
	}
}
service {
	name = "ItemService"
	base_path = "/items"
	default_auth = "header"
	endpoint {
		name = "getItem"
		http = "GET /items/{itemId}"
		auth = "cookie:TOKEN"
		arg {
			name = "itemId"
			type = "uuid"
			param_type = .path
			param_id = "itemId"
		}
		returns = "optional<Item>"
		tag = "read"
		error = "ItemNotFound"
	}
}
`
	testutil.ExpectNoDiff(t, expect, schematext.Encode(file))
}

func TestEncodeEmpty(t *testing.T) {
	testutil.ExpectEq(t, "", schematext.Encode(&schema.SchemaFile{}))
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestEncodeToWriteError(t *testing.T) {
	file := &schema.SchemaFile{DefaultPackage: names.MustPackage("com.example")}
	err := schematext.EncodeTo(file, failingWriter{})
	testutil.ExpectTrue(t, errors.Is(err, errWrite))
}

func TestEncodeFiles(t *testing.T) {
	files := []*schema.SchemaFile{
		{Path: "/schemas/common.yml", DefaultPackage: names.MustPackage("com.example.common")},
		{Path: "/schemas/main.yml", DefaultPackage: names.MustPackage("com.example")},
	}
	expect := `# common.yml
default_package = "com.example.common"

# main.yml
default_package = "com.example"
`
	testutil.ExpectNoDiff(t, expect, schematext.EncodeFiles(files))
}
