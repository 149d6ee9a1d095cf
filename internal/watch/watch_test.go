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

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/palantir/conjure-sub003/compiler"
	"github.com/palantir/conjure-sub003/internal/testutil"
	"github.com/palantir/conjure-sub003/internal/watch"
)

const mainYAML = `
types:
  conjure-imports:
    common: common.yml
  definitions:
    default-package: com.example
    objects:
      Item:
        fields:
          id: common.ItemId
`

const commonYAML = `
types:
  definitions:
    default-package: com.example.common
    objects:
      ItemId:
        alias: string
`

type session struct {
	w       *watch.Watcher
	results chan compiler.CompileResult
	cancel  context.CancelFunc
	done    chan struct{}
}

func startWatch(t *testing.T, input string) *session {
	t.Helper()
	s := &session{
		results: make(chan compiler.CompileResult, 16),
		done:    make(chan struct{}),
	}
	w, err := watch.New(
		compiler.NewCompileOptions(),
		[]string{input},
		watch.WithDebounce(10*time.Millisecond),
		watch.OnResult(func(result compiler.CompileResult) {
			s.results <- result
		}),
	)
	testutil.AssertNoError(t, err)
	s.w = w

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go func() {
		defer close(s.done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		s.cancel()
		<-s.done
	})
	return s
}

// await skips results until one satisfies ok. A single save can produce
// more than one event, so stale duplicates are expected.
func (s *session) await(t *testing.T, ok func(compiler.CompileResult) bool) compiler.CompileResult {
	t.Helper()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case result := <-s.results:
			if ok(result) {
				return result
			}
		case <-timeout:
			t.Fatal("timed out waiting for a compilation")
		}
	}
}

func succeeded(result compiler.CompileResult) bool {
	return len(result.Errors) == 0
}

func failed(result compiler.CompileResult) bool {
	return len(result.Errors) > 0
}

func TestWatchRecompilesImportedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"main.yml":   mainYAML,
		"common.yml": commonYAML,
	})
	s := startWatch(t, filepath.Join(dir, "main.yml"))

	first := s.await(t, succeeded)
	testutil.ExpectEq(t, 2, len(first.Units))

	commonPath := filepath.Join(dir, "common.yml")
	testutil.AssertNoError(t, os.WriteFile(commonPath, []byte("types: [\n"), 0o644))
	broken := s.await(t, failed)
	testutil.ExpectCode(t, 4000, broken.Errors[0])
	testutil.ExpectTrue(t, broken.RunID != first.RunID)

	testutil.AssertNoError(t, os.WriteFile(commonPath, []byte(commonYAML), 0o644))
	fixed := s.await(t, succeeded)
	testutil.ExpectEq(t, 2, len(fixed.Units))
}

func TestWatchMissingImportCreated(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"main.yml": mainYAML})
	s := startWatch(t, filepath.Join(dir, "main.yml"))

	missing := s.await(t, failed)
	testutil.ExpectCode(t, 4001, missing.Errors[0])

	testutil.WriteFiles(t, dir, map[string]string{"common.yml": commonYAML})
	s.await(t, succeeded)
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"main.yml":   mainYAML,
		"common.yml": commonYAML,
	})
	s := startWatch(t, filepath.Join(dir, "main.yml"))
	s.await(t, succeeded)

	testutil.WriteFiles(t, dir, map[string]string{"notes.txt": "unrelated"})
	select {
	case result := <-s.results:
		t.Fatalf("unexpected recompilation %s", result.RunID)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchStop(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"main.yml":   mainYAML,
		"common.yml": commonYAML,
	})
	s := startWatch(t, filepath.Join(dir, "main.yml"))
	s.await(t, succeeded)

	s.w.Stop()
	s.w.Stop()
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
