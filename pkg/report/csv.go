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

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/driftwatch/driftwatch/pkg/models"
)

var resultColumns = []string{"Device", "Status", "Drift Detected", "Issues Count", "Issues", "Timestamp"}

func (g *Generator) generateCSV(batch *models.ValidationBatch, summary models.ReportSummary) (string, error) {
	path := g.artifactPath(batch.ID, FormatCSV)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV report: %w", err)
	}

	w := csv.NewWriter(f)

	// Summary block first, then the result table, mirroring the XLSX
	// summary sheet.
	rows := [][]string{
		{"Report Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Devices", strconv.Itoa(summary.Total)},
		{"Devices with Drift", strconv.Itoa(summary.DriftCount)},
		{"Devices with Errors", strconv.Itoa(summary.ErrorCount)},
		{"Success Rate", fmt.Sprintf("%.1f%%", summary.SuccessRate*100)},
		{},
		resultColumns,
	}

	for _, r := range batch.Results {
		rows = append(rows, resultRow(r))
	}

	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write CSV report: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close CSV report: %w", err)
	}

	return path, nil
}

func resultRow(r *models.ValidationResult) []string {
	return []string{
		r.Device,
		string(r.Status),
		strconv.FormatBool(r.DriftDetected),
		strconv.Itoa(len(r.Issues)),
		joinIssues(r.Issues),
		r.Timestamp.Format(time.RFC3339),
	}
}
