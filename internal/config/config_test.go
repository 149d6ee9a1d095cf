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

package config_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/palantir/conjure-sub003/encoding/irjson"
	"github.com/palantir/conjure-sub003/internal/config"
	"github.com/palantir/conjure-sub003/internal/testutil"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"conjure.yml": text})
	return filepath.Join(dir, "conjure.yml")
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
log:
  level: debug
  format: json
output:
  path: out/ir.json
  compression: zstd
codegen:
  plugin_path: /opt/conjure/plugins
  options:
    flavor: retrofit
trace:
  enabled: true
metrics:
  file: metrics.prom
`)
	cfg, err := config.Load(path)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "debug", cfg.Log.Level)
	testutil.ExpectEq(t, "json", cfg.Log.Format)
	testutil.ExpectEq(t, "out/ir.json", cfg.Output.Path)
	testutil.ExpectEq(t, "json", cfg.Output.Format)
	testutil.ExpectEq(t, irjson.CompressionZstd, cfg.Compression())
	testutil.ExpectEq(t, "/opt/conjure/plugins", cfg.Codegen.PluginPath)
	testutil.ExpectEq(t, "retrofit", cfg.Codegen.Options["flavor"])
	testutil.ExpectTrue(t, cfg.Trace.Enabled)
	testutil.ExpectEq(t, "metrics.prom", cfg.Metrics.File)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load(writeConfig(t, ""))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "info", cfg.Log.Level)
	testutil.ExpectEq(t, "console", cfg.Log.Format)
	testutil.ExpectEq(t, "json", cfg.Output.Format)
	testutil.ExpectEq(t, irjson.CompressionNone, cfg.Compression())
	testutil.ExpectFalse(t, cfg.Trace.Enabled)
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_CONJURE_PLUGINS", "/from/env")
	cfg, err := config.Load(writeConfig(t, "codegen:\n  plugin_path: ${TEST_CONJURE_PLUGINS}/wasm\n"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "/from/env/wasm", cfg.Codegen.PluginPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONJURE_LOG_LEVEL", "warn")
	t.Setenv("CONJURE_COMPRESSION", "gzip")
	t.Setenv("CONJURE_TRACE", "yes")
	t.Setenv("CONJURE_METRICS_FILE", "/tmp/conjure.prom")
	cfg, err := config.Load(writeConfig(t, "log:\n  level: debug\n"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "warn", cfg.Log.Level)
	testutil.ExpectEq(t, irjson.CompressionGzip, cfg.Compression())
	testutil.ExpectTrue(t, cfg.Trace.Enabled)
	testutil.ExpectEq(t, "/tmp/conjure.prom", cfg.Metrics.File)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONJURE_LOG_FORMAT", "json")
	t.Setenv("CONJURE_PLUGIN_PATH", "/a:/b")
	t.Setenv("CONJURE_OUTPUT", "ir.json.zst")
	cfg, err := config.LoadFromEnv()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "json", cfg.Log.Format)
	testutil.ExpectEq(t, "/a:/b", cfg.Codegen.PluginPath)
	testutil.ExpectEq(t, "ir.json.zst", cfg.Output.Path)
}

func TestLoadWithFallbackMissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yml"))
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown field", "logging:\n  level: info\n", "field logging not found"},
		{"bad level", "log:\n  level: loud\n", "log.level must be one of"},
		{"bad log format", "log:\n  format: xml\n", "log.format must be"},
		{"bad output format", "output:\n  format: binary\n", "output.format must be"},
		{"bad compression", "output:\n  compression: lz4\n", `unknown compression "lz4"`},
		{"compressed text", "output:\n  format: text\n  compression: gzip\n", "requires output.format 'json'"},
		{"bad option name", "codegen:\n  options:\n    \"a=b\": c\n", `invalid option name "a=b"`},
		{"not a mapping", "- log\n", "cannot unmarshal"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeConfig(t, test.text))
			testutil.AssertError(t, err)
			testutil.ExpectContains(t, test.want, err.Error())
		})
	}
}
