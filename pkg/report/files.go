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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Content is a fetched report artifact. For text formats the raw content is
// inlined; binary formats carry a placeholder instead.
type Content struct {
	ID       string      `json:"id"`
	Filename string      `json:"filename"`
	Path     string      `json:"path"`
	Format   string      `json:"format"`
	Content  interface{} `json:"content"`
}

// List returns references to every rendered artifact, newest first.
func (g *Generator) List() ([]Report, error) {
	pattern := filepath.Join(g.dir, filePrefix+"*")

	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]Report, 0, len(files))

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat report: %w", err)
		}

		base := filepath.Base(path)
		ext := strings.TrimPrefix(filepath.Ext(base), ".")

		reports = append(reports, Report{
			ID:       strings.TrimSuffix(base, filepath.Ext(base)),
			Filename: base,
			Path:     path,
			Format:   ext,
			Size:     info.Size(),
			Created:  info.ModTime().Format(time.RFC3339),
			Modified: info.ModTime().Format(time.RFC3339),
		})
	}

	// Newest first; IDs embed the run timestamp so name order is time order.
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Filename > reports[j].Filename
	})

	return reports, nil
}

// Get fetches one artifact by report ID. JSON is preferred; other formats
// are tried in a fixed order when no JSON artifact exists.
func (g *Generator) Get(id string) (*Content, error) {
	jsonPath := filepath.Join(g.dir, id+".json")

	data, err := os.ReadFile(jsonPath)
	if err == nil {
		var content interface{}
		if err := json.Unmarshal(data, &content); err != nil {
			return nil, fmt.Errorf("failed to parse report %s: %w", id, err)
		}

		return &Content{
			ID:       id,
			Filename: id + ".json",
			Path:     jsonPath,
			Format:   "json",
			Content:  content,
		}, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read report %s: %w", id, err)
	}

	for _, ext := range []string{"csv", "xlsx", "html"} {
		path := filepath.Join(g.dir, id+"."+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		content := interface{}("Binary file")

		if ext == "csv" || ext == "html" {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read report %s: %w", id, err)
			}

			content = string(data)
		}

		return &Content{
			ID:       id,
			Filename: id + "." + ext,
			Path:     path,
			Format:   ext,
			Content:  content,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
