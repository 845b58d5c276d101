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
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/driftwatch/driftwatch/pkg/models"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Validation Results"
)

func (g *Generator) generateXLSX(batch *models.ValidationBatch, summary models.ReportSummary) (string, error) {
	path := g.artifactPath(batch.ID, FormatXLSX)

	f := excelize.NewFile()

	defer func() {
		if cerr := f.Close(); cerr != nil {
			g.log.Warn().Err(cerr).Msg("Failed to close XLSX file")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return "", fmt.Errorf("failed to build XLSX report: %w", err)
	}

	summaryRows := []struct {
		label string
		value interface{}
	}{
		{"Report Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Devices", summary.Total},
		{"Devices with Drift", summary.DriftCount},
		{"Devices with Errors", summary.ErrorCount},
		{"Success Rate", fmt.Sprintf("%.1f%%", summary.SuccessRate*100)},
	}

	for i, row := range summaryRows {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row.label); err != nil {
			return "", fmt.Errorf("failed to build XLSX report: %w", err)
		}

		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row.value); err != nil {
			return "", fmt.Errorf("failed to build XLSX report: %w", err)
		}
	}

	if _, err := f.NewSheet(resultsSheet); err != nil {
		return "", fmt.Errorf("failed to build XLSX report: %w", err)
	}

	for col, header := range resultColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("failed to build XLSX report: %w", err)
		}

		if err := f.SetCellValue(resultsSheet, cell, header); err != nil {
			return "", fmt.Errorf("failed to build XLSX report: %w", err)
		}
	}

	for i, r := range batch.Results {
		values := []interface{}{
			r.Device,
			string(r.Status),
			r.DriftDetected,
			len(r.Issues),
			joinIssues(r.Issues),
			r.Timestamp.Format(time.RFC3339),
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", fmt.Errorf("failed to build XLSX report: %w", err)
			}

			if err := f.SetCellValue(resultsSheet, cell, v); err != nil {
				return "", fmt.Errorf("failed to build XLSX report: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to write XLSX report: %w", err)
	}

	return path, nil
}
