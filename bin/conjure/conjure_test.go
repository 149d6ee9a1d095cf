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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/palantir/conjure-sub003/encoding/irjson"
	"github.com/palantir/conjure-sub003/internal/testutil"
)

const itemsYAML = `
types:
  conjure-imports:
    common: common.yml
  definitions:
    default-package: com.example
    objects:
      Item:
        fields:
          id: common.ItemId
services:
  ItemService:
    name: Item Service
    package: com.example
    base-path: /items
    endpoints:
      getItem:
        http: GET /{id}
        args:
          id: common.ItemId
        returns: Item
`

const commonYAML = `
types:
  definitions:
    default-package: com.example.common
    objects:
      ItemId:
        alias: string
`

func writeSchemas(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"items.yml":  itemsYAML,
		"common.yml": commonYAML,
	})
	return dir
}

type cliResult struct {
	rc     int
	stdout string
	stderr string
}

func conjure(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rc := runMain(context.Background(), args, &stdout, &stderr)
	return cliResult{rc, stdout.String(), stderr.String()}
}

func TestCompileJSON(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	res := conjure(t, "compile", filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 0, res.rc)

	doc, err := irjson.Decode([]byte(res.stdout))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, len(doc.Types))
	testutil.ExpectEq(t, 1, len(doc.Services))
	testutil.ExpectContains(t, "compiled", res.stderr)
}

func TestCompileText(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	res := conjure(t, "compile", "--format=text", filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 0, res.rc)
	testutil.ExpectTrue(t, strings.HasPrefix(res.stdout, "# common.yml\n"))
	testutil.ExpectContains(t, "# items.yml\n", res.stdout)
	testutil.ExpectContains(t, `service {`, res.stdout)
}

func TestCompileCompressedOutput(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	outPath := filepath.Join(dir, "out", "ir.json.zst")
	res := conjure(t, "compile", "-o", outPath, filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 0, res.rc)
	testutil.ExpectEq(t, "", res.stdout)

	fp, err := os.Open(outPath)
	testutil.AssertNoError(t, err)
	defer fp.Close()
	data, err := irjson.Read(fp)
	testutil.AssertNoError(t, err)
	_, err = irjson.Decode(data)
	testutil.ExpectNoError(t, err)
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"bad.yml": `
types:
  definitions:
    default-package: com.example
    objects:
      Color:
        values: [RED, RED]
`})
	outPath := filepath.Join(dir, "ir.json")
	res := conjure(t, "compile", "-o", outPath, filepath.Join(dir, "bad.yml"))
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, "E5001: ", res.stderr)
	_, err := os.Stat(outPath)
	testutil.ExpectTrue(t, os.IsNotExist(err))
}

func TestCompileTextRejectsCompression(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	res := conjure(t, "compile", "-f", "text", "--compression=gzip", filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, "requires the json format", res.stderr)
}

func TestCompileUsage(t *testing.T) {
	t.Parallel()
	res := conjure(t, "compile")
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, "usage: conjure compile", res.stderr)
}

func TestCompileMetricsFile(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	metricsPath := filepath.Join(dir, "conjure.prom")
	res := conjure(t, "compile", "--metrics-file", metricsPath, filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 0, res.rc)

	metrics, err := os.ReadFile(metricsPath)
	testutil.AssertNoError(t, err)
	testutil.ExpectContains(t, "conjure_files_parsed_total 2", string(metrics))
	testutil.ExpectContains(t, `conjure_endpoints_total{method="GET"} 1`, string(metrics))
}

func TestCompileTrace(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	res := conjure(t, "--trace", "compile", filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 0, res.rc)
	testutil.ExpectContains(t, `"Name": "conjure/compile"`, res.stderr)
	testutil.ExpectContains(t, `"Name": "conjure/validate"`, res.stderr)
}

func TestConfigFile(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	outPath := filepath.Join(dir, "ir.txt")
	testutil.WriteFiles(t, dir, map[string]string{"conjure.yml": `
log:
  level: debug
  format: json
output:
  path: ` + outPath + `
  format: text
`})
	res := conjure(t, "compile", "--config", filepath.Join(dir, "conjure.yml"), filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 0, res.rc)
	testutil.ExpectContains(t, `"level":"debug"`, res.stderr)

	text, err := os.ReadFile(outPath)
	testutil.AssertNoError(t, err)
	testutil.ExpectContains(t, "# items.yml", string(text))
}

func TestConfigFileInvalid(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	testutil.WriteFiles(t, dir, map[string]string{"conjure.yml": "log:\n  format: xml\n"})
	res := conjure(t, "compile", "--config", filepath.Join(dir, "conjure.yml"), filepath.Join(dir, "items.yml"))
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, "log.format", res.stderr)
}

func pluginDir(t *testing.T) string {
	t.Helper()
	dir, err := testutil.TestdataDir()
	testutil.AssertNoError(t, err)
	return filepath.Join(dir, "codegen")
}

func TestCodegen(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	outDir := filepath.Join(dir, "generated")
	res := conjure(t, "codegen",
		"--plugin-path", pluginDir(t),
		"--language", "fixed",
		"--options", "flavor=plain",
		"-o", outDir,
		filepath.Join(dir, "items.yml"),
	)
	testutil.ExpectEq(t, 0, res.rc)
	testutil.ExpectContains(t, "code generated", res.stderr)

	items, err := os.ReadFile(filepath.Join(outDir, "com", "example", "Items.txt"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "items\n", string(items))
	readme, err := os.ReadFile(filepath.Join(outDir, "README.txt"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "generated\n", string(readme))
}

func TestCodegenPluginFailure(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	outDir := filepath.Join(dir, "generated")
	res := conjure(t, "codegen",
		"--plugin-path", pluginDir(t),
		"--language", "failing",
		"-o", outDir,
		filepath.Join(dir, "items.yml"),
	)
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, "unsupported option: flavor", res.stderr)
	_, err := os.Stat(outDir)
	testutil.ExpectTrue(t, os.IsNotExist(err))
}

func TestCodegenArguments(t *testing.T) {
	t.Parallel()
	dir := writeSchemas(t)
	schemaPath := filepath.Join(dir, "items.yml")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no output", []string{"--language", "fixed", schemaPath}, "No output directory specified"},
		{"no language", []string{"-o", dir, schemaPath}, "No language specified"},
		{"bad options", []string{"-o", dir, "-l", "fixed", "--plugin-path", pluginDir(t), "--options", "a=1,", schemaPath}, "Invalid plugin options"},
		{"unknown plugin", []string{"-o", dir, "-l", "cobol", "--plugin-path", pluginDir(t), schemaPath}, "conjure-codegen-cobol.wasm not found"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			res := conjure(t, append([]string{"codegen"}, test.args...)...)
			testutil.ExpectEq(t, 1, res.rc)
			testutil.ExpectContains(t, test.want, res.stderr)
		})
	}
}

func TestNoCommand(t *testing.T) {
	t.Parallel()
	res := conjure(t)
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, "Available Commands", res.stderr)

	res = conjure(t, "frobnicate")
	testutil.ExpectEq(t, 1, res.rc)
	testutil.ExpectContains(t, `unknown command "frobnicate"`, res.stderr)
}
