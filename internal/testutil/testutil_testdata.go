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

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// A Diagnostic is one entry of a diagnostics catalog under
// testdata/diagnostics, keyed by a stable name rather than its code.
type Diagnostic struct {
	Key     string
	Code    uint32
	Message string
	Pattern *regexp.Regexp
}

// LoadDiagnostics reads testdata/diagnostics/<name>.json. Keys starting
// with '_' reserve a code without naming a diagnostic.
func LoadDiagnostics(testdata fs.FS, name string) (map[string]*Diagnostic, error) {
	type raw struct {
		Code    uint32 `json:"code"`
		Message string `json:"message"`
		Pattern string `json:"message_pattern"`
	}

	jsonData, err := fs.ReadFile(testdata, "diagnostics/"+name+".json")
	if err != nil {
		return nil, err
	}

	var rawDiagnostics map[string]raw
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&rawDiagnostics); err != nil {
		return nil, err
	}

	out := make(map[string]*Diagnostic, len(rawDiagnostics))
	codes := make(map[uint32]struct{}, len(rawDiagnostics))
	for key, raw := range rawDiagnostics {
		if raw.Code != 0 {
			if _, conflict := codes[raw.Code]; conflict {
				return nil, fmt.Errorf("%s: duplicate code %d", name, raw.Code)
			}
			codes[raw.Code] = struct{}{}
		}
		if key[0] == '_' {
			continue
		}
		if raw.Code == 0 {
			return nil, fmt.Errorf("%s: %q has no code", name, key)
		}

		var pattern *regexp.Regexp
		if raw.Pattern != "" {
			pattern, err = regexp.Compile("(?i)" + raw.Pattern)
			if err != nil {
				return nil, err
			}
		}
		out[key] = &Diagnostic{
			Key:     key,
			Code:    raw.Code,
			Message: raw.Message,
			Pattern: pattern,
		}
	}

	return out, nil
}

// LoadExpectedDiagnostics reads a list of expected diagnostics, such as a
// test case's expect_err.json or expect_warn.json:
//
//	{"errors": [{"error": "recursive_type", "message_contains": "Foo -> Foo"}]}
//	{"warnings": [{"warning": "unused_import"}]}
func LoadExpectedDiagnostics(
	t *testing.T,
	catalog map[string]*Diagnostic,
	testdata fs.FS,
	jsonPath string,
) []*ExpectedDiagnostic {
	t.Helper()

	jsonData, err := fs.ReadFile(testdata, jsonPath)
	if err != nil {
		t.Fatal(err)
	}

	type entry struct {
		Error    string `json:"error"`
		Warning  string `json:"warning"`
		Contains string `json:"message_contains"`
	}
	type expected struct {
		Errors   []entry `json:"errors"`
		Warnings []entry `json:"warnings"`
	}

	var raw expected
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		t.Fatal(err)
	}

	var out []*ExpectedDiagnostic
	for _, raw := range append(raw.Errors, raw.Warnings...) {
		name := raw.Error
		if name == "" {
			name = raw.Warning
		}
		diag, ok := catalog[name]
		if !ok {
			t.Fatalf("unknown diagnostic name %q", name)
		}
		out = append(out, &ExpectedDiagnostic{
			Diagnostic: *diag,
			Contains:   raw.Contains,
		})
	}
	return out
}

type ExpectedDiagnostic struct {
	Diagnostic
	Contains string
}

// TestdataDir returns the absolute path of the repository's testdata
// directory, found by walking up from the working directory to go.mod.
func TestdataDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "testdata"), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("testdata: no go.mod above working directory")
		}
		dir = parent
	}
}

func TestdataFS() (fs.FS, error) {
	dir, err := TestdataDir()
	if err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

// WriteFiles creates each named file under dir, for tests that need real
// paths on disk.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
