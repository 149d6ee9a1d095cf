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

package compiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/palantir/conjure-sub003/schema"
)

// Metrics counts what compilations do. A nil *Metrics records nothing.
type Metrics struct {
	Compilations       *prometheus.CounterVec
	CompileDuration    prometheus.Histogram
	FilesParsed        prometheus.Counter
	Definitions        *prometheus.CounterVec
	Endpoints          *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
}

// NewMetrics registers the compiler's metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "conjure",
				Name:      "compilations_total",
				Help:      "Total number of compilations, by result",
			},
			[]string{"result"},
		),
		CompileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "conjure",
				Name:      "compile_duration_seconds",
				Help:      "Compilation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		FilesParsed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "conjure",
				Name:      "files_parsed_total",
				Help:      "Total number of schema files read and parsed",
			},
		),
		Definitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "conjure",
				Name:      "definitions_total",
				Help:      "Total number of definitions compiled, by kind",
			},
			[]string{"kind"},
		),
		Endpoints: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "conjure",
				Name:      "endpoints_total",
				Help:      "Total number of endpoints compiled, by HTTP method",
			},
			[]string{"method"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "conjure",
				Name:      "validation_failures_total",
				Help:      "Total number of validation failures, by validator",
			},
			[]string{"validator"},
		),
	}
}

func (m *Metrics) fileParsed() {
	if m != nil {
		m.FilesParsed.Inc()
	}
}

func (m *Metrics) validationFailed(validator string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(validator).Inc()
	}
}

func (m *Metrics) compiled(start time.Time, units []*Unit, failed bool) {
	if m == nil {
		return
	}
	m.CompileDuration.Observe(time.Since(start).Seconds())
	if failed {
		m.Compilations.WithLabelValues("error").Inc()
		return
	}
	m.Compilations.WithLabelValues("ok").Inc()
	for _, unit := range units {
		for _, t := range unit.File.Types {
			m.Definitions.WithLabelValues(schema.DefinitionKind(t.Def)).Inc()
		}
		for _, e := range unit.File.Errors {
			m.Definitions.WithLabelValues(schema.DefinitionKind(e.Def)).Inc()
		}
		for _, svc := range unit.File.Services {
			m.Definitions.WithLabelValues("service").Inc()
			for _, ep := range svc.Def.Endpoints {
				m.Endpoints.WithLabelValues(ep.Method).Inc()
			}
		}
	}
}
