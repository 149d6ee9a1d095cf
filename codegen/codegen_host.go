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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/palantir/conjure-sub003/codegen"

	// 16384 pages of 64 KiB is 1 GiB.
	memoryLimitPages = 16384
)

// A Host instantiates plugins in a fresh sandbox for each request.
type Host struct {
	log    zerolog.Logger
	tracer trace.Tracer
	stderr io.Writer
}

type HostOption func(*Host)

func WithLogger(logger zerolog.Logger) HostOption {
	return func(h *Host) {
		h.log = logger
	}
}

func WithTracerProvider(tp trace.TracerProvider) HostOption {
	return func(h *Host) {
		h.tracer = tp.Tracer(instrumentationName)
	}
}

// WithStderr sets where the plugin's standard error goes. By default it is
// discarded.
func WithStderr(w io.Writer) HostOption {
	return func(h *Host) {
		h.stderr = w
	}
}

func NewHost(opts ...HostOption) *Host {
	h := &Host{
		log:    zerolog.Nop(),
		stderr: io.Discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracer == nil {
		h.tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return h
}

// Run reads the plugin at path and calls [Host.Generate].
func (h *Host) Run(ctx context.Context, path string, req *Request) (*Response, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return h.Generate(ctx, filepath.Base(path), bin, req)
}

// Generate runs one code generation request through the plugin binary bin.
// The name is used in errors and logs.
func (h *Host) Generate(ctx context.Context, name string, bin []byte, req *Request) (*Response, error) {
	ctx, span := h.tracer.Start(ctx, "conjure/codegen", trace.WithAttributes(
		attribute.String("conjure.plugin", name),
		attribute.Int("conjure.plugin_size", len(bin)),
	))
	defer span.End()

	resp, err := h.generate(ctx, name, bin, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("conjure.output_files", len(resp.OutputFiles)))
	h.log.Debug().
		Str("plugin", name).
		Int("output_files", len(resp.OutputFiles)).
		Msg("plugin finished")
	return resp, nil
}

func (h *Host) generate(ctx context.Context, name string, bin []byte, req *Request) (*Response, error) {
	if req.Options == nil {
		req = &Request{IR: req.IR, Options: map[string]string{}}
	}
	requestBuf, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding codegen request: %w", err)
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(memoryLimitPages)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, err
	}
	pluginExe, err := runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	moduleConfig := wasm.NewModuleConfig().
		WithStderr(h.stderr).
		WithStartFunctions("_initialize")
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}

	wasmAlloc := plugin.ExportedFunction(allocateExport)
	if wasmAlloc == nil {
		return nil, fmt.Errorf("plugin %s does not export %s", name, allocateExport)
	}
	wasmGenerate := plugin.ExportedFunction(generateExport)
	if wasmGenerate == nil {
		return nil, fmt.Errorf("plugin %s does not export %s", name, generateExport)
	}
	mem := plugin.Memory()
	if mem == nil {
		return nil, fmt.Errorf("plugin %s does not export its memory", name)
	}

	requestPtr, err := allocate(ctx, wasmAlloc, uint32(4+len(requestBuf)))
	if err != nil {
		return nil, err
	}
	if !mem.WriteUint32Le(requestPtr, uint32(len(requestBuf))) ||
		!mem.Write(requestPtr+4, requestBuf) {
		return nil, fmt.Errorf("plugin %s: request does not fit in plugin memory", name)
	}
	responsePtrPtr, err := allocate(ctx, wasmAlloc, 4)
	if err != nil {
		return nil, err
	}

	h.log.Debug().Str("plugin", name).Int("request_bytes", len(requestBuf)).Msg("running plugin")
	results, err := wasmGenerate.Call(ctx, uint64(requestPtr), uint64(responsePtrPtr))
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	rc := uint8(results[0])

	responseBuf, err := readMessage(mem, responsePtrPtr)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	var resp Response
	if err := json.NewDecoder(bytes.NewReader(responseBuf)).Decode(&resp); err != nil {
		return nil, fmt.Errorf("plugin %s: decoding response: %w", name, err)
	}
	if rc != 0 || resp.Error != "" {
		return nil, &PluginError{Plugin: name, Code: rc, Message: resp.Error}
	}
	if len(resp.OutputFiles) == 0 {
		return nil, ErrNoOutput
	}
	return &resp, nil
}

func allocate(ctx context.Context, fn api.Function, size uint32) (uint32, error) {
	results, err := fn.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("%s(%d): %w", allocateExport, size, err)
	}
	if results[0] == 0 {
		return 0, fmt.Errorf("%s(%d): out of memory", allocateExport, size)
	}
	return uint32(results[0]), nil
}

func readMessage(mem api.Memory, ptrPtr uint32) ([]byte, error) {
	ptr, ok := mem.ReadUint32Le(ptrPtr)
	if !ok {
		return nil, errors.New("Failed to read response pointer")
	}
	length, ok := mem.ReadUint32Le(ptr)
	if !ok {
		return nil, errors.New("Failed to read response message length")
	}
	buf, ok := mem.Read(ptr+4, length)
	if !ok {
		return nil, errors.New("Failed to read response message")
	}
	return buf, nil
}
