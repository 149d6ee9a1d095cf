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

package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/palantir/conjure-sub003/internal/logging"
	"github.com/palantir/conjure-sub003/internal/testutil"
)

func TestNewJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := logging.New("info", logging.FormatJSON, &buf)
	testutil.AssertNoError(t, err)
	log.Debug().Msg("hidden")
	log.Info().Str("path", "a.yml").Msg("compiled")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	testutil.ExpectEq(t, 1, len(lines))
	var entry map[string]any
	testutil.AssertNoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	testutil.ExpectEq(t, "info", entry["level"])
	testutil.ExpectEq(t, "compiled", entry["message"])
	testutil.ExpectEq(t, "a.yml", entry["path"])
	_, hasTime := entry["time"]
	testutil.ExpectTrue(t, hasTime)
}

func TestNewConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := logging.New("debug", logging.FormatConsole, &buf)
	testutil.AssertNoError(t, err)
	log.Debug().Int("files", 3).Msg("compiling")

	out := buf.String()
	testutil.ExpectContains(t, "DBG", out)
	testutil.ExpectContains(t, "compiling", out)
	testutil.ExpectContains(t, "files=3", out)
	testutil.ExpectFalse(t, strings.Contains(out, "\x1b["))
}

func TestNewErrors(t *testing.T) {
	t.Parallel()
	_, err := logging.New("loud", logging.FormatJSON, &bytes.Buffer{})
	testutil.AssertError(t, err)
	testutil.ExpectContains(t, "log level", err.Error())

	_, err = logging.New("info", "xml", &bytes.Buffer{})
	testutil.AssertError(t, err)
	testutil.ExpectContains(t, `unknown log format "xml"`, err.Error())
}
