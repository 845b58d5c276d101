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

package models

import "time"

// ConfigType identifies one of the distinct configuration states a device
// may expose.
type ConfigType string

const (
	ConfigTypeRunning   ConfigType = "running"
	ConfigTypeStartup   ConfigType = "startup"
	ConfigTypeCandidate ConfigType = "candidate"
)

// ConfigTypeAll is the selector that expands to running and startup.
// Candidate is deliberately excluded from the expansion; it has to be
// requested explicitly.
const ConfigTypeAll = "all"

// ResultStatus is the outcome classification of a single comparison.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// ValidationResult is the outcome of comparing one device's live
// configuration of one config-type against its baseline. Results are
// immutable once produced.
//
// When Status is StatusError, DriftDetected is always false: drift is
// undefined when the comparison could not occur, which is not the same
// thing as "no drift".
type ValidationResult struct {
	Device        string       `json:"device"`
	ConfigType    ConfigType   `json:"config_type"`
	Status        ResultStatus `json:"status"`
	Message       string       `json:"message,omitempty"`
	DriftDetected bool         `json:"drift_detected"`
	Issues        []string     `json:"issues"`
	MissingLines  []string     `json:"missing_lines,omitempty"`
	ExtraLines    []string     `json:"extra_lines,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// ValidationBatch is the ordered result set of one orchestration run,
// identified by a timestamp-derived ID. Read-only history once written.
type ValidationBatch struct {
	ID      string              `json:"id"`
	RunAt   time.Time           `json:"run_at"`
	Results []*ValidationResult `json:"results"`
}

// BaselineMeta is the sibling metadata record stored next to a baseline
// configuration text.
type BaselineMeta struct {
	Device     string     `json:"device"`
	ConfigType ConfigType `json:"config_type"`
	Timestamp  time.Time  `json:"timestamp"`
	Source     string     `json:"source"`
}

// ReportSummary holds the aggregate fields every report encoding must
// surface identically.
type ReportSummary struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total_devices"`
	DriftCount  int       `json:"devices_with_drift"`
	ErrorCount  int       `json:"devices_with_errors"`
	SuccessRate float64   `json:"success_rate"`
}

// Summarize computes the aggregate counters for a result set. The success
// rate is (total - errors) / total, defined as 0 for an empty set so every
// encoder avoids the division-by-zero edge case the same way.
func Summarize(results []*ValidationResult) ReportSummary {
	s := ReportSummary{
		GeneratedAt: time.Now(),
		Total:       len(results),
	}

	for _, r := range results {
		if r.DriftDetected {
			s.DriftCount++
		}

		if r.Status == StatusError {
			s.ErrorCount++
		}
	}

	if s.Total > 0 {
		s.SuccessRate = float64(s.Total-s.ErrorCount) / float64(s.Total)
	}

	return s
}
