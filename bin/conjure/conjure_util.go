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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/trace"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/encoding/irjson"
	"github.com/palantir/conjure-sub003/encoding/schematext"
	"github.com/palantir/conjure-sub003/internal/config"
	"github.com/palantir/conjure-sub003/internal/logging"
	"github.com/palantir/conjure-sub003/internal/tracing"
	"github.com/palantir/conjure-sub003/schema"
)

// globals holds the flags shared by every command. Flags that are set
// override the config file.
type globals struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	logLevel    string
	logFormat   string
	trace       bool
	metricsFile string
}

func (g *globals) flags(flags *pflag.FlagSet) {
	flags.StringVar(&g.configPath, "config", "", "Read settings from this YAML file (default "+config.DefaultPath+" if present)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: console or json")
	flags.BoolVar(&g.trace, "trace", false, "Write compilation spans to stderr as JSON")
	flags.StringVar(&g.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
}

type session struct {
	cfg      *config.Config
	log      zerolog.Logger
	tracing  *tracing.Provider
	registry *prometheus.Registry
	metrics  *compiler.Metrics
}

func (g *globals) start() (*session, error) {
	cfg, err := config.LoadWithFallback(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if g.trace {
		cfg.Trace.Enabled = true
	}
	if g.metricsFile != "" {
		cfg.Metrics.File = g.metricsFile
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, g.stderr)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}
	s.metrics = compiler.NewMetrics(s.registry)
	if cfg.Trace.Enabled {
		if s.tracing, err = tracing.New(g.stderr); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *session) tracerProvider() trace.TracerProvider {
	if s.tracing == nil {
		return nil
	}
	return s.tracing
}

func (s *session) compileOptions(extra ...compiler.CompileOption) *compiler.CompileOptions {
	opts := []compiler.CompileOption{
		compiler.WithLogger(s.log),
		compiler.WithMetrics(s.metrics),
	}
	if tp := s.tracerProvider(); tp != nil {
		opts = append(opts, compiler.WithTracerProvider(tp))
	}
	return compiler.NewCompileOptions(append(opts, extra...)...)
}

// close flushes spans and writes the metrics file.
func (s *session) close(ctx context.Context) error {
	var errs []error
	if s.tracing != nil {
		errs = append(errs, s.tracing.Shutdown(ctx))
	}
	if path := s.cfg.Metrics.File; path != "" {
		if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// finish closes s and reports any failure, turning a zero exit code into 1.
func (s *session) finish(ctx context.Context, stderr io.Writer, rc int) int {
	if err := s.close(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return rc
}

// printDiagnostics writes every warning and error of result to w, and
// reports whether compilation failed.
func printDiagnostics(w io.Writer, result *compiler.CompileResult) bool {
	for _, warn := range result.Warnings {
		fmt.Fprintln(w, warn.String())
	}
	for _, err := range result.Errors {
		fmt.Fprintln(w, err.Error())
	}
	return len(result.Errors) > 0
}

// outputCompression picks the compression for path: name when it is set,
// otherwise from the path's extension.
func outputCompression(name, path string) (irjson.Compression, error) {
	if name != "" {
		return irjson.ParseCompression(name)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case irjson.CompressionGzip.Extension():
		return irjson.CompressionGzip, nil
	case irjson.CompressionZstd.Extension():
		return irjson.CompressionZstd, nil
	}
	return irjson.CompressionNone, nil
}

// encodeResult renders a successful compilation in format, "json" or
// "text".
func encodeResult(result *compiler.CompileResult, format string) ([]byte, error) {
	switch format {
	case "json":
		return irjson.Encode(result)
	case "text":
		files := make([]*schema.SchemaFile, len(result.Units))
		for ii, unit := range result.Units {
			files[ii] = unit.File
		}
		return []byte(schematext.EncodeFiles(files)), nil
	}
	return nil, fmt.Errorf("Unsupported output format %q (choose 'json' or 'text')", format)
}

// writeOutput writes data to outPath, or to stdout when outPath is empty.
func writeOutput(stdout io.Writer, outPath string, data []byte, c irjson.Compression) error {
	if outPath == "" {
		return irjson.Write(stdout, data, c)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	fp, err := os.OpenFile(outPath, openFlags, 0o666)
	if err != nil {
		return err
	}
	writeErr := irjson.Write(fp, data, c)
	closeErr := fp.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
