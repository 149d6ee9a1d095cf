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
	"encoding/json"
	"fmt"
	"maps"

	"github.com/spf13/pflag"

	"github.com/palantir/conjure-sub003/codegen"
	"github.com/palantir/conjure-sub003/encoding/irjson"
)

type cmdCodegen struct {
	*globals
	outDir     string
	pluginPath string
	language   string
	options    string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen [options] SCHEMA...",
		summary: "Compile schema files and run a code generator plugin on the IR",
		minArgs: 1,
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outDir, "output", "o", "", "Directory to write generated files into")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "Directories to search for plugins (default $"+codegen.PluginPathEnv+")")
	flags.StringVarP(&cmd.language, "language", "l", "", "Language to generate, naming the plugin conjure-codegen-LANGUAGE.wasm")
	flags.StringVar(&cmd.options, "options", "", "Plugin options as key=value,key=value")
}

func (cmd *cmdCodegen) run(ctx context.Context, argv []string) int {
	if cmd.outDir == "" {
		fmt.Fprintln(cmd.stderr, "No output directory specified (set --output=)")
		return 1
	}
	if cmd.language == "" {
		fmt.Fprintln(cmd.stderr, "No language specified (set --language=)")
		return 1
	}
	s, err := cmd.start()
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	return s.finish(ctx, cmd.stderr, cmd.generate(ctx, s, argv))
}

func (cmd *cmdCodegen) generate(ctx context.Context, s *session, argv []string) int {
	options := maps.Clone(s.cfg.Codegen.Options)
	if options == nil {
		options = make(map[string]string)
	}
	flagOptions, err := codegen.ParseOptions(cmd.options)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	maps.Copy(options, flagOptions)

	pluginPath := cmd.pluginPath
	if pluginPath == "" {
		pluginPath = s.cfg.Codegen.PluginPath
	}
	plugin, err := codegen.LocatePlugin(pluginPath, cmd.language)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}

	result := s.compileOptions().Compile(ctx, argv)
	if printDiagnostics(cmd.stderr, &result) {
		return 1
	}
	ir, err := irjson.Encode(&result)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}

	hostOpts := []codegen.HostOption{
		codegen.WithLogger(s.log),
		codegen.WithStderr(cmd.stderr),
	}
	if tp := s.tracerProvider(); tp != nil {
		hostOpts = append(hostOpts, codegen.WithTracerProvider(tp))
	}
	host := codegen.NewHost(hostOpts...)
	resp, err := host.Run(ctx, plugin, &codegen.Request{
		IR:      json.RawMessage(ir),
		Options: options,
	})
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}

	written, err := codegen.WriteOutputs(cmd.outDir, resp.OutputFiles)
	if err != nil {
		fmt.Fprintln(cmd.stderr, err)
		return 1
	}
	for _, path := range written {
		s.log.Debug().Str("path", path).Msg("generated")
	}
	s.log.Info().
		Str("language", cmd.language).
		Int("files", len(written)).
		Str("output", cmd.outDir).
		Msg("code generated")
	return 0
}
