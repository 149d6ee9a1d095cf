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

// Package config loads the settings shared by every conjure command from a
// YAML file and CONJURE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/palantir/conjure-sub003/encoding/irjson"
)

// DefaultPath is read when no config file is named and it exists.
const DefaultPath = "conjure.yml"

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Output  OutputConfig  `yaml:"output"`
	Codegen CodegenConfig `yaml:"codegen"`
	Trace   TraceConfig   `yaml:"trace"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type OutputConfig struct {
	Path        string `yaml:"path"`
	Format      string `yaml:"format"`      // json or text
	Compression string `yaml:"compression"` // none, gzip or zstd; empty infers from Path
}

type CodegenConfig struct {
	PluginPath string            `yaml:"plugin_path"`
	Options    map[string]string `yaml:"options"`
}

type TraceConfig struct {
	Enabled bool `yaml:"enabled"`
}

type MetricsConfig struct {
	File string `yaml:"file"` // Prometheus text file written after each run
}

// Load reads configuration from a YAML file. Environment variables are
// expanded in the file's text and CONJURE_* variables override its values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return finish(&cfg)
}

// LoadFromEnv builds configuration from defaults and CONJURE_* variables
// only.
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

// LoadWithFallback loads path if it is set. Otherwise it loads
// [DefaultPath] if that exists, and falls back to [LoadFromEnv].
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return Load(DefaultPath)
	}
	return LoadFromEnv()
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CONJURE_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONJURE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CONJURE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CONJURE_PLUGIN_PATH"); v != "" {
		cfg.Codegen.PluginPath = v
	}
	if v := os.Getenv("CONJURE_OUTPUT"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("CONJURE_COMPRESSION"); v != "" {
		cfg.Output.Compression = v
	}
	if v := os.Getenv("CONJURE_TRACE"); v != "" {
		cfg.Trace.Enabled = parseBool(v)
	}
	if v := os.Getenv("CONJURE_METRICS_FILE"); v != "" {
		cfg.Metrics.File = v
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
}

func validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json', got %q", cfg.Log.Format)
	}
	if cfg.Output.Format != "json" && cfg.Output.Format != "text" {
		return fmt.Errorf("output.format must be 'json' or 'text', got %q", cfg.Output.Format)
	}
	c, err := irjson.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return fmt.Errorf("output.compression: %w", err)
	}
	if c != irjson.CompressionNone && cfg.Output.Format != "json" {
		return fmt.Errorf("output.compression %q requires output.format 'json'", cfg.Output.Compression)
	}
	for key := range cfg.Codegen.Options {
		if key == "" || strings.ContainsAny(key, "=,") {
			return fmt.Errorf("codegen.options: invalid option name %q", key)
		}
	}
	return nil
}

// Compression returns the parsed output compression of a validated config.
func (cfg *Config) Compression() irjson.Compression {
	c, err := irjson.ParseCompression(cfg.Output.Compression)
	if err != nil {
		panic("unreachable")
	}
	return c
}
