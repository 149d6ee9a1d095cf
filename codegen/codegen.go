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

// Package codegen runs code generator plugins compiled to WebAssembly.
//
// A plugin exports its linear memory plus two functions:
//
//	conjure_codegen_allocate(len u32) -> ptr u32
//	conjure_codegen_generate(request ptr u32, response ptr-to-ptr u32) -> u8
//
// The request and response are JSON documents prefixed with their length as
// a little-endian u32. A non-zero result from generate means the response
// carries an error message.
package codegen

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	allocateExport = "conjure_codegen_allocate"
	generateExport = "conjure_codegen_generate"
)

type Request struct {
	IR      json.RawMessage   `json:"ir"`
	Options map[string]string `json:"options"`
}

type Response struct {
	OutputFiles []OutputFile `json:"outputFiles"`
	Error       string       `json:"error,omitempty"`
}

// An OutputFile is one generated file. Path holds the components of a path
// relative to the output directory.
type OutputFile struct {
	Path    []string `json:"path"`
	Content string   `json:"content"`
}

var ErrNoOutput = errors.New("Plugin did not generate any output files")

// A PluginError is a failure reported by the plugin itself.
type PluginError struct {
	Plugin  string
	Code    uint8
	Message string
}

func (err *PluginError) Error() string {
	return fmt.Sprintf("plugin %s failed (code %d): %s", err.Plugin, err.Code, err.Message)
}
