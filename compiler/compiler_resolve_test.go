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

package compiler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/encoding/schematext"
	"github.com/palantir/conjure-sub003/internal/testutil"
	"github.com/palantir/conjure-sub003/syntax"
)

const baseYAML = `
types:
  definitions:
    default-package: com.example.base
    objects:
      Id:
        alias: string
`

func diamondFiles() map[string]string {
	return map[string]string{
		"main.yml": `
types:
  conjure-imports:
    left: sub/left.yml
    right: sub/right.yml
  definitions:
    default-package: com.example
    objects:
      Pair:
        fields:
          left: left.Left
          right: right.Right
`,
		"sub/left.yml": `
types:
  conjure-imports:
    base: base.yml
  definitions:
    default-package: com.example.left
    objects:
      Left:
        fields:
          id: base.Id
`,
		"sub/right.yml": `
types:
  conjure-imports:
    base: ../sub/base.yml
  definitions:
    default-package: com.example.right
    objects:
      Right:
        fields:
          id: base.Id
`,
		"sub/base.yml": baseYAML,
	}
}

func unitNames(units []*compiler.Unit) []string {
	var out []string
	for _, unit := range units {
		out = append(out, filepath.Base(unit.File.Path))
	}
	return out
}

func TestCompileDiamondParsesSharedImportOnce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, diamondFiles())

	metrics := compiler.NewMetrics(prometheus.NewRegistry())
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithMetrics(metrics),
	)
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}

	testutil.ExpectEq(t, 4.0, promtest.ToFloat64(metrics.FilesParsed))
	testutil.ExpectEq(t, 4, len(result.Files))
	testutil.ExpectSliceEq(t,
		[]string{"base.yml", "left.yml", "right.yml", "main.yml"},
		unitNames(result.Units),
	)
	testutil.ExpectEq(t, 1.0, promtest.ToFloat64(metrics.Compilations.WithLabelValues("ok")))
	testutil.ExpectEq(t, 3.0, promtest.ToFloat64(metrics.Definitions.WithLabelValues("object")))
	testutil.ExpectEq(t, 1.0, promtest.ToFloat64(metrics.Definitions.WithLabelValues("alias")))

	// Both importers see the same compiled file.
	left, ok := result.Unit(filepath.Join(dir, "sub", "left.yml"))
	testutil.ExpectTrue(t, ok)
	right, ok := result.Unit(filepath.Join(dir, "sub", "right.yml"))
	testutil.ExpectTrue(t, ok)
	leftBase, ok := left.Imports.Lookup(left.File.Imports[0].Namespace)
	testutil.ExpectTrue(t, ok)
	rightBase, ok := right.Imports.Lookup(right.File.Imports[0].Namespace)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, leftBase == rightBase)
	base, ok := result.Unit(filepath.Join(dir, "sub", "base.yml"))
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, base.File == leftBase)
}

func TestCompileMultipleInputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"base.yml": baseYAML,
		"a.yml": `
types:
  conjure-imports:
    base: base.yml
  definitions:
    default-package: com.example.a
    objects:
      A:
        alias: base.Id
`,
		"b.yml": `
types:
  conjure-imports:
    base: base.yml
  definitions:
    default-package: com.example.b
    objects:
      B:
        alias: base.Id
`,
	})

	metrics := compiler.NewMetrics(prometheus.NewRegistry())
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yml")},
		compiler.WithMetrics(metrics),
	)
	testutil.ExpectEq(t, 0, len(result.Errors))
	testutil.ExpectEq(t, 3.0, promtest.ToFloat64(metrics.FilesParsed))
	testutil.ExpectSliceEq(t,
		[]string{"base.yml", "a.yml", "b.yml"},
		unitNames(result.Units),
	)
}

func TestCompileImportCycle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a.yml": `
types:
  conjure-imports:
    bee: b.yml
  definitions:
    default-package: com.example.a
`,
		"b.yml": `
types:
  conjure-imports:
    ay: a.yml
  definitions:
    default-package: com.example.b
`,
	})

	aPath := filepath.Join(dir, "a.yml")
	result := compiler.Compile(context.Background(), []string{aPath})
	testutil.ExpectEq(t, 0, len(result.Units))
	testutil.ExpectEq(t, 2, len(result.Files))
	if len(result.Errors) != 1 {
		t.Fatalf("len(result.Errors) = %d, want 1", len(result.Errors))
	}
	err := result.Errors[0]
	testutil.ExpectCode(t, 4002, err)
	parts := strings.Split(strings.TrimPrefix(
		err.Message(), "Cyclic conjure imports are not allowed: ",
	), " -> ")
	testutil.ExpectEq(t, 3, len(parts))
	testutil.ExpectEq(t, "a.yml", filepath.Base(parts[0]))
	testutil.ExpectEq(t, "b.yml", filepath.Base(parts[1]))
	testutil.ExpectEq(t, "a.yml", filepath.Base(parts[2]))
}

func TestCompileMissingInput(t *testing.T) {
	t.Parallel()
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(t.TempDir(), "nope.yml")},
	)
	if len(result.Errors) != 1 {
		t.Fatalf("len(result.Errors) = %d, want 1", len(result.Errors))
	}
	err := result.Errors[0]
	testutil.ExpectCode(t, 4001, err)
	testutil.ExpectFalse(t, strings.Contains(err.Message(), "imported from"))
	cerr, ok := compiler.AsError(err)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, cerr == err)
}

const manyErrorsYAML = `
types:
  definitions:
    default-package: com.example
    objects:
      Color:
        values:
          - FOO
          - FOO
          - bad
      Foo:
        fields:
          self: Foo
`

func TestCompileStopsAtFirstError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"main.yml": manyErrorsYAML})

	metrics := compiler.NewMetrics(prometheus.NewRegistry())
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithMetrics(metrics),
	)
	if len(result.Errors) != 1 {
		t.Fatalf("len(result.Errors) = %d, want 1", len(result.Errors))
	}
	testutil.ExpectCode(t, 5001, result.Errors[0])
	testutil.ExpectEq(t, 1.0, promtest.ToFloat64(
		metrics.ValidationFailures.WithLabelValues("unique-enum-values"),
	))
	testutil.ExpectEq(t, 1.0, promtest.ToFloat64(metrics.Compilations.WithLabelValues("error")))
}

func TestCompileReportAllErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"main.yml": manyErrorsYAML})

	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithReportAllErrors(),
	)
	var codes []uint32
	for _, err := range result.Errors {
		codes = append(codes, err.Code())
	}
	testutil.ExpectSliceEq(t, []uint32{5001, 5003, 5007}, codes)
	testutil.ExpectEq(t, 0, len(result.Units))
}

func TestCompileTracing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, diamondFiles())

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithTracerProvider(tp),
	)
	testutil.ExpectEq(t, 0, len(result.Errors))

	var spanNames []string
	for _, span := range recorder.Ended() {
		spanNames = append(spanNames, span.Name())
	}
	for _, want := range []string{
		"conjure/compile",
		"conjure/resolve",
		"conjure/validate",
		"conjure/validate/references",
		"conjure/validate/services",
		"conjure/normalize",
	} {
		if !slices.Contains(spanNames, want) {
			t.Errorf("missing span %q in %v", want, spanNames)
		}
	}
}

func TestCompileTracingRecordsFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"main.yml": manyErrorsYAML})

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithTracerProvider(tp),
	)

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != "conjure/compile" {
			continue
		}
		found = true
		testutil.ExpectEq(t, "Error", span.Status().Code.String())
		testutil.ExpectEq(t, 1, len(span.Events()))
	}
	testutil.ExpectTrue(t, found)
}

func TestCompileLogging(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, diamondFiles())

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithLogger(logger),
	)
	testutil.ExpectEq(t, 0, len(result.Errors))

	var entry struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		RunID   string `json:"run_id"`
		Files   int    `json:"files"`
	}
	testutil.AssertNoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	testutil.ExpectEq(t, "info", entry.Level)
	testutil.ExpectEq(t, "compiled", entry.Message)
	testutil.ExpectEq(t, result.RunID, entry.RunID)
	testutil.ExpectEq(t, 4, entry.Files)
}

func TestCompileWarningsAreLogged(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"main.yml": `
types:
  definitions:
    default-package: com.example
    objects:
      Event:
        fields:
          created_at: datetime
`,
	})

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.WarnLevel)
	result := compiler.Compile(
		context.Background(),
		[]string{filepath.Join(dir, "main.yml")},
		compiler.WithLogger(logger),
	)
	if len(result.Warnings) != 1 {
		t.Fatalf("len(result.Warnings) = %d, want 1", len(result.Warnings))
	}
	testutil.ExpectEq(t, uint32(6000), result.Warnings[0].Code())
	testutil.ExpectContains(t, "createdAt", result.Warnings[0].Message())
	testutil.ExpectContains(t, `"level":"warn"`, buf.String())
	testutil.ExpectContains(t, "W6000", buf.String())
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	file, err := syntax.ParseFile("main.yml", []byte(`
types:
  definitions:
    default-package: com.example
    objects:
      Zebra:
        alias: string
      Apple:
        alias: string
    errors:
      Second:
        namespace: Beta
        code: INTERNAL
      First:
        namespace: Beta
        code: INTERNAL
      Third:
        namespace: Alpha
        code: INTERNAL
services:
  ZooService:
    endpoints:
      ping:
        http: GET /ping
  AppService:
    endpoints:
      ping:
        http: GET /ping
`))
	testutil.AssertNoError(t, err)
	before := schematext.Encode(file)

	normalized := compiler.Normalize(file)
	testutil.ExpectEq(t, "Apple", normalized.Types[0].Name.String())
	testutil.ExpectEq(t, "Zebra", normalized.Types[1].Name.String())

	var errorNames []string
	for _, e := range normalized.Errors {
		errorNames = append(errorNames, e.Name.String())
	}
	testutil.ExpectSliceEq(t, []string{"Third", "First", "Second"}, errorNames)
	testutil.ExpectEq(t, "AppService", normalized.Services[0].Name.String())

	// The input is left as it was, and normalizing again changes nothing.
	testutil.ExpectNoDiff(t, before, schematext.Encode(file))
	testutil.ExpectNoDiff(t,
		schematext.Encode(normalized),
		schematext.Encode(compiler.Normalize(normalized)),
	)
}
