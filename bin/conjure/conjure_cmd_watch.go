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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/encoding/irjson"
	"github.com/palantir/conjure-sub003/internal/watch"
)

type cmdWatch struct {
	*globals
	outPath  string
	debounce time.Duration
}

func (*cmdWatch) help() *commandHelp {
	return &commandHelp{
		usage:   "watch [options] SCHEMA...",
		summary: "Recompile schema files whenever they or their imports change",
		minArgs: 1,
	}
}

func (cmd *cmdWatch) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "Write the IR of each successful compilation to this file")
	flags.DurationVar(&cmd.debounce, "debounce", watch.DefaultDebounce, "Wait this long after a change before recompiling")
}

func (cmd *cmdWatch) run(ctx context.Context, argv []string) int {
	s, err := cmd.start()
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	outPath := cmd.outPath
	if outPath == "" {
		outPath = s.cfg.Output.Path
	}
	c, err := outputCompression(s.cfg.Output.Compression, outPath)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}

	w, err := watch.New(
		s.compileOptions(),
		argv,
		watch.WithLogger(s.log),
		watch.WithDebounce(cmd.debounce),
		watch.OnResult(func(result compiler.CompileResult) {
			printDiagnostics(cmd.stderr, &result)
			if len(result.Errors) > 0 || outPath == "" {
				return
			}
			cmd.writeIR(s, &result, outPath, c)
		}),
	)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	w.Run(ctx)
	return s.finish(context.WithoutCancel(ctx), cmd.stderr, 0)
}

func (cmd *cmdWatch) writeIR(s *session, result *compiler.CompileResult, outPath string, c irjson.Compression) {
	ir, err := irjson.Encode(result)
	if err == nil {
		err = writeOutput(cmd.stdout, outPath, ir, c)
	}
	if err != nil {
		s.log.Error().Err(err).Str("output", outPath).Msg("cannot write IR")
		return
	}
	s.log.Info().Str("output", outPath).Str("run_id", result.RunID).Msg("wrote IR")
}
