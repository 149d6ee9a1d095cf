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
	"fmt"

	"github.com/spf13/pflag"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/encoding/irjson"
)

type cmdCompile struct {
	*globals
	outPath     string
	format      string
	compression string
	allErrors   bool
}

func (*cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile [options] SCHEMA...",
		summary: "Compile schema files and their imports into Conjure IR",
		minArgs: 1,
	}
}

func (cmd *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "Write output to this file instead of stdout")
	flags.StringVarP(&cmd.format, "format", "f", "", "Output format: json (Conjure IR) or text")
	flags.StringVar(&cmd.compression, "compression", "", "Compress output with none, gzip or zstd (default from the output extension)")
	flags.BoolVar(&cmd.allErrors, "all-errors", false, "Report every validation error instead of stopping at the first")
}

func (cmd *cmdCompile) run(ctx context.Context, argv []string) int {
	s, err := cmd.start()
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	return s.finish(ctx, cmd.stderr, cmd.compile(ctx, s, argv))
}

func (cmd *cmdCompile) compile(ctx context.Context, s *session, argv []string) int {
	outPath := cmd.outPath
	if outPath == "" {
		outPath = s.cfg.Output.Path
	}
	format := cmd.format
	if format == "" {
		format = s.cfg.Output.Format
	}
	compressionName := cmd.compression
	if compressionName == "" {
		compressionName = s.cfg.Output.Compression
	}
	c, err := outputCompression(compressionName, outPath)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	if c != irjson.CompressionNone && format != "json" {
		fmt.Fprintf(cmd.stderr, "Compression %s requires the json format\n", c)
		return 1
	}

	var extra []compiler.CompileOption
	if cmd.allErrors {
		extra = append(extra, compiler.WithReportAllErrors())
	}
	result := s.compileOptions(extra...).Compile(ctx, argv)
	if printDiagnostics(cmd.stderr, &result) {
		return 1
	}

	output, err := encodeResult(&result, format)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	if err := writeOutput(cmd.stdout, outPath, output, c); err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	if outPath != "" {
		s.log.Debug().Str("output", outPath).Str("compression", c.String()).Msg("wrote IR")
	}
	return 0
}
