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

// Package report renders validation batches into JSON, CSV, XLSX and HTML
// artifacts.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const (
	filePrefix = "validation_report_"
	fileMode   = 0o600
	dirMode    = 0o755

	issueSeparator = "; "
)

var (
	// ErrUnsupportedFormat rejects encodings outside json/csv/xlsx/html.
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// ErrNotFound is returned when no artifact exists under a report ID.
	ErrNotFound = errors.New("report not found")
)

// Format selects the report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// Report is a reference to one rendered artifact.
type Report struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Format   string `json:"format,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Created  string `json:"created,omitempty"`
	Modified string `json:"modified,omitempty"`
}

// Generator renders batches into a reports directory.
type Generator struct {
	dir string
	log logger.Logger
}

// NewGenerator opens the reports directory, creating it if needed.
func NewGenerator(dir string, log logger.Logger) (*Generator, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create reports dir: %w", err)
	}

	return &Generator{
		dir: dir,
		log: log.WithComponent("report"),
	}, nil
}

// Generate renders the batch in the requested encoding and returns a
// reference to the artifact. Every encoding surfaces the same aggregate
// fields: total count, drift count, error count and success rate.
func (g *Generator) Generate(batch *models.ValidationBatch, format Format) (*Report, error) {
	summary := models.Summarize(batch.Results)

	var (
		path string
		err  error
	)

	switch format {
	case FormatJSON:
		path, err = g.generateJSON(batch, summary)
	case FormatCSV:
		path, err = g.generateCSV(batch, summary)
	case FormatXLSX:
		path, err = g.generateXLSX(batch, summary)
	case FormatHTML:
		path, err = g.generateHTML(batch, summary)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err != nil {
		g.log.Error().Err(err).Str("format", string(format)).Msg("Failed to generate validation report")
		return nil, err
	}

	g.log.Info().Str("file", path).Str("format", string(format)).Msg("Report generated")

	return &Report{
		ID:       filePrefix + batch.ID,
		Filename: filePrefix + batch.ID + "." + string(format),
		Path:     path,
		Format:   string(format),
	}, nil
}

func (g *Generator) artifactPath(batchID string, format Format) string {
	return filepath.Join(g.dir, fmt.Sprintf("%s%s.%s", filePrefix, batchID, format))
}

func joinIssues(issues []string) string {
	return strings.Join(issues, issueSeparator)
}
