/*
 * Copyright 2025 Driftwatch Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package validate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/driftwatch/driftwatch/pkg/models"
)

// Metrics collects orchestration counters.
type Metrics interface {
	RecordRun(group, configType string)
	RecordResult(result *models.ValidationResult)
	RecordRunDuration(d time.Duration)
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (*NoOpMetrics) RecordRun(_, _ string)                   {}
func (*NoOpMetrics) RecordResult(_ *models.ValidationResult) {}
func (*NoOpMetrics) RecordRunDuration(_ time.Duration)       {}

// PrometheusMetrics exposes orchestration counters through a Prometheus
// registry.
type PrometheusMetrics struct {
	runs     *prometheus.CounterVec
	results  *prometheus.CounterVec
	drift    prometheus.Counter
	duration prometheus.Histogram
}

// NewPrometheusMetrics registers the validation metrics on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	return &PrometheusMetrics{
		runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "driftwatch",
			Name:      "validation_runs_total",
			Help:      "Validation runs started, by group and config-type selector.",
		}, []string{"group", "config_type"}),
		results: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "driftwatch",
			Name:      "validation_results_total",
			Help:      "Per-device comparison results, by status.",
		}, []string{"status"}),
		drift: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "driftwatch",
			Name:      "drift_detected_total",
			Help:      "Comparisons that found configuration drift.",
		}),
		duration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "driftwatch",
			Name:      "validation_run_duration_seconds",
			Help:      "Wall time of whole validation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

func (m *PrometheusMetrics) RecordRun(group, configType string) {
	m.runs.WithLabelValues(group, configType).Inc()
}

func (m *PrometheusMetrics) RecordResult(result *models.ValidationResult) {
	m.results.WithLabelValues(string(result.Status)).Inc()

	if result.DriftDetected {
		m.drift.Inc()
	}
}

func (m *PrometheusMetrics) RecordRunDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}
