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

// Package compiler resolves the imports of schema files, validates the
// resulting set of files, and puts each file into canonical order.
package compiler

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/palantir/conjure-sub003/schema"
)

const instrumentationName = "github.com/palantir/conjure-sub003/compiler"

type CompileOption interface {
	apply(*CompileOptions)
}

type compileOption func(*CompileOptions)

func (f compileOption) apply(opts *CompileOptions) { f(opts) }

type CompileOptions struct {
	logger         zerolog.Logger
	tracerProvider trace.TracerProvider
	metrics        *Metrics
	reportAll      bool
}

func WithLogger(logger zerolog.Logger) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.logger = logger
	})
}

// WithTracerProvider sets the source of compilation spans. The default is
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.tracerProvider = tp
	})
}

func WithMetrics(metrics *Metrics) CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.metrics = metrics
	})
}

// WithReportAllErrors runs every validator and collects every failure,
// rather than stopping at the first.
func WithReportAllErrors() CompileOption {
	return compileOption(func(opts *CompileOptions) {
		opts.reportAll = true
	})
}

// A Unit is one compiled file, with the files its imports name.
type Unit struct {
	File    *schema.SchemaFile
	Imports *schema.ResolvedImports
}

type CompileResult struct {
	RunID string

	// Units holds each file of the inputs' import closure, after the files
	// it imports. It is empty if compilation failed.
	Units []*Unit

	// Files lists the absolute path of every file read, in the order they
	// were read. It is set even if compilation failed.
	Files []string

	Errors   []*Error
	Warnings []*Warning
}

// Unit finds the compiled unit of the file at path.
func (r *CompileResult) Unit(path string) (*Unit, bool) {
	abs, err := canonicalPath(path)
	if err != nil {
		return nil, false
	}
	for _, unit := range r.Units {
		if unit.File.Path == abs {
			return unit, true
		}
	}
	return nil, false
}

// Compile reads the schema files at paths, along with everything they
// import, and validates them as one set.
func Compile(ctx context.Context, paths []string, opts ...CompileOption) CompileResult {
	return NewCompileOptions(opts...).Compile(ctx, paths)
}

func NewCompileOptions(opts ...CompileOption) *CompileOptions {
	compileOptions := &CompileOptions{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt.apply(compileOptions)
	}
	if compileOptions.tracerProvider == nil {
		compileOptions.tracerProvider = otel.GetTracerProvider()
	}
	return compileOptions
}

func (opts *CompileOptions) Compile(ctx context.Context, paths []string) CompileResult {
	start := time.Now()
	runID := uuid.NewString()
	c := &compiler{
		opts:   opts,
		log:    opts.logger.With().Str("run_id", runID).Logger(),
		tracer: opts.tracerProvider.Tracer(instrumentationName),
	}
	c.resolver = newResolver(c.log, opts.metrics)

	ctx, span := c.tracer.Start(ctx, "conjure/compile", trace.WithAttributes(
		attribute.String("conjure.run_id", runID),
		attribute.StringSlice("conjure.inputs", paths),
	))
	defer span.End()

	c.log.Debug().Strs("inputs", paths).Msg("compiling")
	c.compile(ctx, paths)

	result := CompileResult{
		RunID:    runID,
		Files:    c.resolver.files,
		Errors:   c.errors,
		Warnings: c.warnings,
	}
	failed := len(c.errors) > 0
	if !failed {
		result.Units = c.units
	}
	opts.metrics.compiled(start, result.Units, failed)

	span.SetAttributes(
		attribute.Int("conjure.files", len(result.Files)),
		attribute.Int("conjure.errors", len(result.Errors)),
		attribute.Int("conjure.warnings", len(result.Warnings)),
	)
	if failed {
		span.RecordError(c.errors[0])
		span.SetStatus(codes.Error, c.errors[0].Message())
		c.log.Debug().
			Int("errors", len(c.errors)).
			Dur("elapsed", time.Since(start)).
			Msg("compilation failed")
	} else {
		c.log.Info().
			Int("files", len(result.Units)).
			Int("warnings", len(result.Warnings)).
			Dur("elapsed", time.Since(start)).
			Msg("compiled")
	}
	return result
}

type compiler struct {
	opts     *CompileOptions
	log      zerolog.Logger
	tracer   trace.Tracer
	resolver *resolver

	units       []*Unit
	unitsByPath map[string]*Unit

	errors   []*Error
	warnings []*Warning
}

func (c *compiler) err(err *Error) {
	c.errors = append(c.errors, err)
}

func (c *compiler) warn(warning *Warning) {
	c.log.Warn().Str("path", warning.path).Msg(warning.String())
	c.warnings = append(c.warnings, warning)
}

func (c *compiler) compile(ctx context.Context, paths []string) {
	c.stage(ctx, "resolve", func(context.Context) {
		for _, path := range paths {
			if _, err := c.resolver.resolve(path, ""); err != nil {
				c.err(err)
				return
			}
		}
		c.units = c.resolver.units
		c.unitsByPath = make(map[string]*Unit, len(c.units))
		for _, unit := range c.units {
			c.unitsByPath[unit.File.Path] = unit
		}
	})
	if len(c.errors) > 0 {
		return
	}
	c.stage(ctx, "validate", c.validate)
	if len(c.errors) > 0 {
		return
	}
	c.stage(ctx, "normalize", func(context.Context) {
		c.units = normalizeUnits(c.units)
	})
}

func (c *compiler) stage(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := c.tracer.Start(ctx, "conjure/"+name)
	defer span.End()
	before := len(c.errors)
	fn(ctx)
	if len(c.errors) > before {
		first := c.errors[before]
		span.RecordError(first)
		span.SetStatus(codes.Error, first.Message())
	}
}

// canonicalPath makes path absolute and resolves symbolic links when the
// file exists.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
