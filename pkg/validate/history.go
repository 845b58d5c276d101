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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	batchFilePrefix = "validation_results_"
	batchFileSuffix = ".json"
)

// HistoryEntry is one persisted batch, identified by its timestamp-derived
// ID with the raw results attached.
type HistoryEntry struct {
	Timestamp string            `json:"timestamp"`
	Results   []json.RawMessage `json:"results"`
}

// History lists persisted batches, newest first. Batches are read-only once
// written; unreadable entries fail the listing rather than being skipped.
func (v *Validator) History() ([]HistoryEntry, error) {
	pattern := filepath.Join(v.dir, batchFilePrefix+"*"+batchFileSuffix)

	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation history: %w", err)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	history := make([]HistoryEntry, 0, len(files))

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read validation history: %w", err)
		}

		var results []json.RawMessage
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}

		id := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), batchFilePrefix), batchFileSuffix)

		history = append(history, HistoryEntry{
			Timestamp: id,
			Results:   results,
		})
	}

	return history, nil
}
