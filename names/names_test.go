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

package names_test

import (
	"testing"

	"github.com/palantir/conjure-sub003/internal/testutil"
	"github.com/palantir/conjure-sub003/names"
)

func TestTypeName(t *testing.T) {
	for _, name := range []string{"Foo", "FooBar", "Foo2Bar", "string", "datetime", "bearertoken"} {
		got, err := names.NewTypeName(name)
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, name, got.String())
	}

	for _, name := range []string{"foo", "FOO", "Foo_Bar", "F", "", "list"} {
		_, err := names.NewTypeName(name)
		nerr := testutil.AssertErrorAs[*names.Error](t, err)
		testutil.ExpectCode(t, 2000, err)
		testutil.ExpectContains(t, "TypeNames must be a primitive type", nerr.Message())
		testutil.ExpectEq(t, name, nerr.Value())
	}
}

func TestTypeNameShadowsKeyword(t *testing.T) {
	for _, name := range []string{"Integer", "String", "List", "Optional", "DateTime", "BearerToken"} {
		_, err := names.NewTypeName(name)
		nerr := testutil.AssertErrorAs[*names.Error](t, err)
		testutil.ExpectCode(t, 2001, err)
		testutil.ExpectEq(t,
			"Invalid use of a built-in identifier (please check case): "+name,
			nerr.Message())
	}
}

func TestFieldName(t *testing.T) {
	tests := []struct {
		name  string
		cases [3]string
	}{
		{"fooBar", [3]string{"fooBar", "foo-bar", "foo_bar"}},
		{"foo-bar", [3]string{"fooBar", "foo-bar", "foo_bar"}},
		{"foo_bar2_baz", [3]string{"fooBar2Baz", "foo-bar2-baz", "foo_bar2_baz"}},
		{"foo", [3]string{"foo", "foo", "foo"}},
	}
	for _, test := range tests {
		name, err := names.NewFieldName(test.name)
		testutil.AssertNoError(t, err)
		for c, want := range test.cases {
			testutil.ExpectEq(t, want, name.ToCase(names.Case(c)).String())
		}
	}

	for _, name := range []string{"Foo", "foo-Bar", "foo__bar", "f", "foo-bar_baz", ""} {
		_, err := names.NewFieldName(name)
		nerr := testutil.AssertErrorAs[*names.Error](t, err)
		testutil.ExpectCode(t, 2002, err)
		testutil.ExpectContains(t, "must follow one of the following patterns", nerr.Message())
	}
}

func TestFieldNameCase(t *testing.T) {
	testutil.ExpectEq(t, names.CamelCase, names.MustFieldName("fooBar").Case())
	testutil.ExpectEq(t, names.KebabCase, names.MustFieldName("foo-bar").Case())
	testutil.ExpectEq(t, names.SnakeCase, names.MustFieldName("foo_bar").Case())
	testutil.ExpectEq(t, "kebab-case", names.KebabCase.String())
}

func TestPackage(t *testing.T) {
	for _, name := range []string{"", "com", "com.palantir.foo", "com.palantir.v2", "com.a"} {
		_, err := names.NewPackage(name)
		testutil.AssertNoError(t, err)
	}
	testutil.ExpectTrue(t, names.MustPackage("").IsZero())

	for _, name := range []string{"Com.palantir", "com..foo", "com.", "c", "com.palantir-foo"} {
		_, err := names.NewPackage(name)
		testutil.AssertErrorAs[*names.Error](t, err)
		testutil.ExpectCode(t, 2003, err)
	}
}

func TestNamespaces(t *testing.T) {
	_, err := names.NewNamespace("foo")
	testutil.AssertNoError(t, err)
	_, err = names.NewNamespace("fooBar")
	testutil.AssertNoError(t, err)
	_, err = names.NewNamespace("Foo")
	testutil.AssertError(t, err)
	_, err = names.NewNamespace("foo2")
	testutil.AssertError(t, err)

	_, err = names.NewErrorNamespace("Conjure")
	testutil.AssertNoError(t, err)
	_, err = names.NewErrorNamespace("MyService2")
	testutil.AssertNoError(t, err)
	_, err = names.NewErrorNamespace("conjure")
	testutil.AssertError(t, err)
}

func TestErrorCode(t *testing.T) {
	code, err := names.ParseErrorCode("NOT_FOUND")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, names.NotFound, code)
	testutil.ExpectEq(t, "NOT_FOUND", code.String())

	_, err = names.ParseErrorCode("not_found")
	testutil.AssertErrorAs[*names.Error](t, err)
	testutil.ExpectCode(t, 2006, err)

	_, err = names.ParseErrorCode("UNKNOWN")
	testutil.AssertError(t, err)
}

func TestParameterAndEndpointNames(t *testing.T) {
	for _, name := range []string{"id", "fooBar", "param1", "aB2"} {
		_, err := names.NewParameterName(name)
		testutil.AssertNoError(t, err)
	}
	for _, name := range []string{"Id", "foo_bar", "foo-bar"} {
		_, err := names.NewParameterName(name)
		testutil.AssertError(t, err)
	}

	for _, name := range []string{"get", "getFooBar", "getV2"} {
		_, err := names.NewEndpointName(name)
		testutil.AssertNoError(t, err)
	}
	for _, name := range []string{"GetFoo", "get-foo", ""} {
		_, err := names.NewEndpointName(name)
		testutil.AssertError(t, err)
	}
}
