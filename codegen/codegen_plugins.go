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

package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/palantir/conjure-sub003/parsec"
)

// PluginPathEnv names the environment variable consulted when no plugin
// path is given.
const PluginPathEnv = "CONJURE_PLUGIN_PATH"

func PluginFileName(language string) string {
	return fmt.Sprintf("conjure-codegen-%s.wasm", language)
}

// LocatePlugin searches each directory of pluginPath (a list separated by
// the OS path list separator) for the plugin for language.
func LocatePlugin(pluginPath, language string) (string, error) {
	if pluginPath == "" {
		pluginPath = os.Getenv(PluginPathEnv)
	}
	if pluginPath == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $%s", PluginPathEnv)
	}
	basename := PluginFileName(language)
	for _, dir := range filepath.SplitList(pluginPath) {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, basename)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("Conjure codegen plugin %s not found in plugin path", basename)
}

// OutputPath joins the components of a generated file's path onto outDir,
// rejecting components that could escape it.
func OutputPath(outDir string, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("Invalid output path %#v: component %q contains a path separator", parts, part)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}

// WriteOutputs writes every output file under outDir and returns the paths
// written. All paths are checked before anything is written.
func WriteOutputs(outDir string, files []OutputFile) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoOutput
	}
	paths := make([]string, len(files))
	for ii, file := range files {
		path, err := OutputPath(outDir, file.Path)
		if err != nil {
			return nil, err
		}
		paths[ii] = path
	}
	for ii, file := range files {
		if err := os.MkdirAll(filepath.Dir(paths[ii]), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(paths[ii], []byte(file.Content), 0o644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func isOptionKeyChar(r rune) bool {
	return parsec.IsIdentifierChar(r) || r == '-' || r == '.'
}

var optionsGrammar = parsec.MapOf(
	parsec.RawString("an option name", isOptionKeyChar, nil),
	parsec.Prefix(
		parsec.Expect("="),
		parsec.RawString("an option value", func(r rune) bool { return r != ',' }, nil),
	),
	parsec.Expect(","),
)

// ParseOptions parses plugin options written as "key=value,key=value".
func ParseOptions(s string) (map[string]string, error) {
	options, err := parsec.Parse(optionsGrammar, s)
	if err != nil {
		return nil, fmt.Errorf("Invalid plugin options %q: %w", s, err)
	}
	return options, nil
}
