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
	"html/template"
	"os"
	"time"

	"github.com/driftwatch/driftwatch/pkg/models"
)

type htmlRow struct {
	Device        string
	Status        string
	StatusClass   string
	DriftDetected bool
	DriftClass    string
	Issues        string
	Timestamp     string
}

type htmlReport struct {
	GeneratedAt   string
	Total         int
	DriftCount    int
	ErrorCount    int
	SuccessRate   string
	ErrorClass    string
	DriftSumClass string
	SuccessClass  string
	Rows          []htmlRow
}

func (g *Generator) generateHTML(batch *models.ValidationBatch, summary models.ReportSummary) (string, error) {
	path := g.artifactPath(batch.ID, FormatHTML)

	data := htmlReport{
		GeneratedAt:   summary.GeneratedAt.Format("2006-01-02 15:04:05"),
		Total:         summary.Total,
		DriftCount:    summary.DriftCount,
		ErrorCount:    summary.ErrorCount,
		SuccessRate:   fmt.Sprintf("%.1f%%", summary.SuccessRate*100),
		ErrorClass:    classWhen(summary.ErrorCount > 0, "error"),
		DriftSumClass: classWhen(summary.DriftCount > 0, "warning"),
		SuccessClass:  classWhen(summary.SuccessRate < 0.9, "warning"),
	}

	for _, r := range batch.Results {
		row := htmlRow{
			Device:        r.Device,
			Status:        string(r.Status),
			StatusClass:   "status-error",
			DriftDetected: r.DriftDetected,
			DriftClass:    "drift-no",
			Issues:        joinIssues(r.Issues),
			Timestamp:     r.Timestamp.Format(time.RFC3339),
		}

		if r.Status == models.StatusSuccess {
			row.StatusClass = "status-success"
		}

		if r.DriftDetected {
			row.DriftClass = "drift-yes"
		}

		data.Rows = append(data.Rows, row)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return "", fmt.Errorf("failed to create HTML report: %w", err)
	}

	if err := htmlTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close HTML report: %w", err)
	}

	return path, nil
}

// classWhen picks the highlight class for a summary tile; tiles fall back
// to the success style.
func classWhen(cond bool, class string) string {
	if cond {
		return class
	}

	return "success"
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Configuration Validation Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #f4f4f4; padding: 20px; border-radius: 5px; }
        .summary { display: flex; gap: 20px; margin: 20px 0; }
        .summary-item { background-color: #e8f4fd; padding: 15px; border-radius: 5px; text-align: center; }
        .summary-item.error { background-color: #ffe8e8; }
        .summary-item.warning { background-color: #fff8e8; }
        .summary-item.success { background-color: #e8f8e8; }
        table { border-collapse: collapse; width: 100%; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        .status-success { color: green; }
        .status-error { color: red; }
        .drift-yes { color: orange; font-weight: bold; }
        .drift-no { color: green; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Configuration Validation Report</h1>
        <p>Generated: {{.GeneratedAt}}</p>
    </div>

    <div class="summary">
        <div class="summary-item">
            <h3>Total Devices</h3>
            <p style="font-size: 24px; margin: 0;">{{.Total}}</p>
        </div>
        <div class="summary-item {{.ErrorClass}}">
            <h3>Errors</h3>
            <p style="font-size: 24px; margin: 0;">{{.ErrorCount}}</p>
        </div>
        <div class="summary-item {{.DriftSumClass}}">
            <h3>Drift Detected</h3>
            <p style="font-size: 24px; margin: 0;">{{.DriftCount}}</p>
        </div>
        <div class="summary-item {{.SuccessClass}}">
            <h3>Success Rate</h3>
            <p style="font-size: 24px; margin: 0;">{{.SuccessRate}}</p>
        </div>
    </div>

    <table>
        <thead>
            <tr>
                <th>Device</th>
                <th>Status</th>
                <th>Drift Detected</th>
                <th>Issues</th>
                <th>Timestamp</th>
            </tr>
        </thead>
        <tbody>
        {{- range .Rows}}
            <tr>
                <td>{{.Device}}</td>
                <td class="{{.StatusClass}}">{{.Status}}</td>
                <td class="{{.DriftClass}}">{{.DriftDetected}}</td>
                <td>{{.Issues}}</td>
                <td>{{.Timestamp}}</td>
            </tr>
        {{- end}}
        </tbody>
    </table>
</body>
</html>
`))
