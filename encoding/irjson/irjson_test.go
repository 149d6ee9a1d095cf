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

package irjson_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/encoding/irjson"
	"github.com/palantir/conjure-sub003/internal/testutil"
)

func compileCase(t *testing.T, name string) compiler.CompileResult {
	t.Helper()
	dir, err := testutil.TestdataDir()
	testutil.AssertNoError(t, err)
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "compiler", name, "main.yml")},
	)
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	if len(result.Errors) > 0 {
		t.FailNow()
	}
	return result
}

func TestEncodeGolden(t *testing.T) {
	t.Parallel()
	result := compileCase(t, "diamond")
	got, err := irjson.Encode(&result)
	testutil.AssertNoError(t, err)

	dir, err := testutil.TestdataDir()
	testutil.AssertNoError(t, err)
	want, err := os.ReadFile(filepath.Join(dir, "irjson", "diamond.json"))
	testutil.AssertNoError(t, err)
	testutil.ExpectNoDiff(t, string(want), string(got))
}

func TestEncodeFailedCompilation(t *testing.T) {
	t.Parallel()
	dir, err := testutil.TestdataDir()
	testutil.AssertNoError(t, err)
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "compiler", "recursive_self", "main.yml")},
	)
	_, err = irjson.Encode(&result)
	testutil.ExpectTrue(t, errors.Is(err, irjson.ErrFailedCompilation))
}

func findType(t *testing.T, doc *irjson.Document, name string) irjson.TypeDefinition {
	t.Helper()
	for _, def := range doc.Types {
		var defName irjson.TypeName
		switch def.Type {
		case "object":
			defName = def.Object.TypeName
		case "enum":
			defName = def.Enum.TypeName
		case "alias":
			defName = def.Alias.TypeName
		case "union":
			defName = def.Union.TypeName
		}
		if defName.Name == name {
			return def
		}
	}
	t.Fatalf("type %s not found", name)
	return irjson.TypeDefinition{}
}

func TestBuildTypes(t *testing.T) {
	t.Parallel()
	result := compileCase(t, "basic")
	doc, err := irjson.Build(result.Units)
	testutil.AssertNoError(t, err)

	testutil.ExpectEq(t, 7, len(doc.Types))
	testutil.ExpectEq(t, "Circle", doc.Types[0].Object.TypeName.Name)

	square := findType(t, doc, "Square")
	testutil.ExpectEq(t, "com.example.shapes", square.Object.TypeName.Package)
	testutil.ExpectEq(t, "com.example.shapes", doc.Types[len(doc.Types)-1].Object.TypeName.Package)

	item := findType(t, doc, "Item")
	testutil.ExpectEq(t, "An item for sale.", item.Object.Docs)
	prices := item.Object.Fields[3]
	testutil.ExpectEq(t, "prices", prices.FieldName)
	testutil.ExpectEq(t, "map", prices.Type.Type)
	testutil.ExpectEq(t, "Currency", prices.Type.Map.KeyType.Reference.Name)
	testutil.ExpectEq(t, "DOUBLE", prices.Type.Map.ValueType.Primitive)

	color := findType(t, doc, "Color")
	testutil.ExpectEq(t, "GREEN", color.Enum.Values[1].Value)
	testutil.ExpectEq(t, "Not red.", color.Enum.Values[1].Docs)

	shape := findType(t, doc, "Shape")
	testutil.ExpectEq(t, "square", shape.Union.Union[1].FieldName)
	testutil.ExpectEq(t, "com.example.shapes", shape.Union.Union[1].Type.Reference.Package)

	testutil.ExpectEq(t, 3, len(doc.Errors))
	notFound := doc.Errors[2]
	testutil.ExpectEq(t, "ItemNotFound", notFound.ErrorName.Name)
	testutil.ExpectEq(t, "NOT_FOUND", notFound.Code)
	testutil.ExpectEq(t, "Items", notFound.Namespace)
	testutil.ExpectEq(t, "itemId", notFound.SafeArgs[0].FieldName)
	testutil.ExpectEq(t, 0, len(notFound.UnsafeArgs))
}

func TestBuildServices(t *testing.T) {
	t.Parallel()
	result := compileCase(t, "basic")
	doc, err := irjson.Build(result.Units)
	testutil.AssertNoError(t, err)

	testutil.ExpectEq(t, 2, len(doc.Services))
	admin, items := doc.Services[0], doc.Services[1]
	testutil.ExpectEq(t, "AdminService", admin.ServiceName.Name)
	testutil.ExpectEq(t, "com.example.items.api", admin.ServiceName.Package)

	reindex := admin.Endpoints[0]
	testutil.ExpectEq(t, "cookie", reindex.Auth.Type)
	testutil.ExpectEq(t, "ADMIN", reindex.Auth.Cookie.CookieName)
	testutil.ExpectEq(t, "Reindexing is automatic.", reindex.Deprecated)
	testutil.ExpectTrue(t, reindex.Returns == nil)

	getItem := items.Endpoints[1]
	testutil.ExpectEq(t, "getItem", getItem.EndpointName)
	testutil.ExpectEq(t, "GET", getItem.HTTPMethod)
	testutil.ExpectEq(t, "/items/{itemId}", getItem.HTTPPath)
	testutil.ExpectEq(t, "header", getItem.Auth.Type)
	testutil.ExpectEq(t, "Item", getItem.Returns.Reference.Name)
	testutil.ExpectSliceEq(t, []string{"read"}, getItem.Tags)

	testutil.ExpectEq(t, 3, len(getItem.Args))
	testutil.ExpectEq(t, "path", getItem.Args[0].ParamType.Type)
	testutil.ExpectEq(t, "query", getItem.Args[1].ParamType.Type)
	testutil.ExpectEq(t, "verbose", getItem.Args[1].ParamType.Query.ParamID)
	testutil.ExpectEq(t, "optional", getItem.Args[1].Type.Type)
	testutil.ExpectEq(t, "BOOLEAN", getItem.Args[1].Type.Optional.ItemType.Primitive)
	testutil.ExpectEq(t, "X-Trace-Id", getItem.Args[2].ParamType.Header.ParamID)

	testutil.ExpectEq(t, 2, len(getItem.Errors))
	testutil.ExpectEq(t, "ItemNotFound", getItem.Errors[0].Error.Name)
	testutil.ExpectEq(t, "com.example.items", getItem.Errors[0].Error.Package)
	testutil.ExpectEq(t, "Caller may not read items.", getItem.Errors[1].Docs)

	putItem := items.Endpoints[0]
	testutil.ExpectEq(t, "body", putItem.Args[1].ParamType.Type)
	testutil.ExpectTrue(t, putItem.Args[1].ParamType.Body != nil)
}

func TestBuildExternals(t *testing.T) {
	t.Parallel()
	result := compileCase(t, "externals")
	doc, err := irjson.Build(result.Units)
	testutil.AssertNoError(t, err)

	event := findType(t, doc, "Event")
	at := event.Object.Fields[0].Type
	testutil.ExpectEq(t, "external", at.Type)
	testutil.ExpectEq(t, "Instant", at.External.ExternalReference.Name)
	testutil.ExpectEq(t, "java.time", at.External.ExternalReference.Package)
	testutil.ExpectEq(t, "STRING", at.External.Fallback.Primitive)

	payload := event.Object.Fields[1].Type.Optional.ItemType
	testutil.ExpectEq(t, "ByteBuffer", payload.External.ExternalReference.Name)
	testutil.ExpectEq(t, "ANY", payload.External.Fallback.Primitive)
}

func TestDecode(t *testing.T) {
	t.Parallel()
	result := compileCase(t, "diamond")
	data, err := irjson.Encode(&result)
	testutil.AssertNoError(t, err)

	doc, err := irjson.Decode(data)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, irjson.Version, doc.Version)
	testutil.ExpectEq(t, 4, len(doc.Types))
	testutil.ExpectEq(t, "Id", doc.Types[0].Alias.TypeName.Name)

	_, err = irjson.Decode([]byte(`{"version": 2}`))
	testutil.ExpectMatch(t, "unsupported IR version 2", err.Error())

	_, err = irjson.Decode([]byte(`{`))
	testutil.AssertError(t, err)
}

func TestCompressionRoundTrip(t *testing.T) {
	t.Parallel()
	data := bytes.Repeat([]byte(`{"version": 1, "types": []}`), 64)
	tests := []struct {
		compression irjson.Compression
		magic       []byte
	}{
		{irjson.CompressionNone, []byte(`{"version"`)},
		{irjson.CompressionGzip, []byte{0x1F, 0x8B}},
		{irjson.CompressionZstd, []byte{0x28, 0xB5, 0x2F, 0xFD}},
	}
	for _, test := range tests {
		t.Run(test.compression.String(), func(t *testing.T) {
			var buf bytes.Buffer
			testutil.AssertNoError(t, irjson.Write(&buf, data, test.compression))
			testutil.ExpectTrue(t, bytes.HasPrefix(buf.Bytes(), test.magic))

			got, err := irjson.Read(&buf)
			testutil.AssertNoError(t, err)
			testutil.ExpectBytesEq(t, data, got)
		})
	}
}

func TestReadShortInput(t *testing.T) {
	t.Parallel()
	got, err := irjson.Read(bytes.NewReader([]byte("{}")))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "{}", string(got))

	got, err = irjson.Read(bytes.NewReader(nil))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(got))
}

func TestParseCompression(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		want irjson.Compression
		ext  string
	}{
		{"", irjson.CompressionNone, ""},
		{"none", irjson.CompressionNone, ""},
		{"gzip", irjson.CompressionGzip, ".gz"},
		{"zstd", irjson.CompressionZstd, ".zst"},
	}
	for _, test := range tests {
		got, err := irjson.ParseCompression(test.name)
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, test.want, got)
		testutil.ExpectEq(t, test.ext, got.Extension())
	}

	_, err := irjson.ParseCompression("brotli")
	testutil.ExpectMatch(t, `unknown compression "brotli"`, err.Error())
}
