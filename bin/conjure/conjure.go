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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	minArgs int
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	g := &globals{stdout: stdout, stderr: stderr}
	exitCode := 0

	conjureCmd := &cobra.Command{
		Use:           "conjure [options] COMMAND",
		Short:         "Compile Conjure API definitions",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	// A nil slice would make cobra fall back to os.Args.
	conjureCmd.SetArgs(append([]string{}, args...))
	conjureCmd.SetOut(stdout)
	conjureCmd.SetErr(stderr)
	conjureCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(stderr, conjureCmd.UsageString())
		exitCode = 1
		return nil
	}
	g.flags(conjureCmd.PersistentFlags())

	commands := []command{
		&cmdCompile{globals: g},
		&cmdCodegen{globals: g},
		&cmdWatch{globals: g},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(c *cobra.Command, args []string) error {
				if len(args) < help.minArgs {
					fmt.Fprintf(stderr, "usage: conjure %s\n", help.usage)
					exitCode = 1
					return nil
				}
				exitCode = cmd.run(c.Context(), args)
				return nil
			},
		}
		conjureCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if err := conjureCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return exitCode
}
