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

// Package watch recompiles a set of schema files whenever one of the files
// in their import closure changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/palantir/conjure-sub003/compiler"
)

const DefaultDebounce = 100 * time.Millisecond

type Option func(*Watcher)

func WithLogger(log zerolog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithDebounce sets how long the watcher waits after a change before
// recompiling. Changes within the window are coalesced.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnResult registers fn to receive the result of every compilation,
// including the first.
func OnResult(fn func(compiler.CompileResult)) Option {
	return func(w *Watcher) { w.onResult = append(w.onResult, fn) }
}

type Watcher struct {
	opts     *compiler.CompileOptions
	inputs   []string
	log      zerolog.Logger
	debounce time.Duration
	onResult []func(compiler.CompileResult)

	fsw   *fsnotify.Watcher
	files map[string]bool
	dirs  map[string]bool

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New returns a watcher that compiles inputs with opts. Every compilation
// starts from an empty import cache.
func New(opts *compiler.CompileOptions, inputs []string, options ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		opts:     opts,
		inputs:   inputs,
		log:      zerolog.Nop(),
		debounce: DefaultDebounce,
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

// Run compiles the inputs, then recompiles on every change until ctx is
// done or [Watcher.Stop] is called.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()
	w.recompile(ctx)

	var fire <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			w.log.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("schema file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.recompile(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("file watcher error")
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) recompile(ctx context.Context) {
	result := w.opts.Compile(ctx, w.inputs)
	files := slices.Clone(result.Files)
	for _, input := range w.inputs {
		if abs, err := filepath.Abs(input); err == nil {
			files = append(files, abs)
		}
	}
	for _, err := range result.Errors {
		w.log.Error().Str("path", err.Path()).Msg(err.Error())
		// A missing import is watched so that creating it recompiles.
		if err.Path() != "" {
			files = append(files, err.Path())
		}
	}
	w.track(files)
	w.log.Info().
		Str("run_id", result.RunID).
		Int("watched", len(w.files)).
		Bool("ok", len(result.Errors) == 0).
		Msg("watching for changes")
	for _, fn := range w.onResult {
		fn(result)
	}
}

// track replaces the watched file set with files, and watches exactly the
// directories containing them.
func (w *Watcher) track(files []string) {
	w.files = make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		w.files[filepath.Clean(file)] = true
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.log.Warn().Err(err).Str("dir", dir).Msg("cannot watch directory")
			delete(dirs, dir)
		}
	}
	for dir := range w.dirs {
		if !dirs[dir] {
			// The directory may already be gone.
			_ = w.fsw.Remove(dir)
		}
	}
	w.dirs = dirs
}
