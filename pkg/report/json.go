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
	"encoding/json"
	"fmt"
	"os"

	"github.com/driftwatch/driftwatch/pkg/models"
)

type jsonReport struct {
	Metadata models.ReportSummary       `json:"report_metadata"`
	Results  []*models.ValidationResult `json:"validation_results"`
}

func (g *Generator) generateJSON(batch *models.ValidationBatch, summary models.ReportSummary) (string, error) {
	path := g.artifactPath(batch.ID, FormatJSON)

	data, err := json.MarshalIndent(jsonReport{
		Metadata: summary,
		Results:  batch.Results,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON report: %w", err)
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}

	return path, nil
}
