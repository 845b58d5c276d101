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

// Package baseline persists the source-of-truth configuration text per
// (device, config-type) along with a sibling metadata record.
package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const (
	fileMode = 0o600
	dirMode  = 0o755
)

// ErrNotFound is returned by Load when no baseline exists for the key.
// Callers must treat "no baseline" as a distinct, expected state rather
// than a storage failure.
var ErrNotFound = errors.New("no source of truth configuration found")

// Store keeps one current baseline per (device, config-type). Writing a new
// baseline overwrites the previous one; there is no version history.
type Store struct {
	dir string
	mu  sync.Mutex
	log logger.Logger
}

// NewStore opens the baseline directory, creating it if needed.
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create baseline dir: %w", err)
	}

	return &Store{
		dir: dir,
		log: log.WithComponent("baseline"),
	}, nil
}

// Save writes the configuration text plus a metadata record stamped with
// the save time and provenance. Baselines are only ever created by an
// explicit operator action; nothing auto-creates them from comparisons.
func (s *Store) Save(device string, configType models.ConfigType, text, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configPath := s.configPath(device, configType)
	if err := os.WriteFile(configPath, []byte(text), fileMode); err != nil {
		return fmt.Errorf("failed to write baseline for %s (%s): %w", device, configType, err)
	}

	meta := models.BaselineMeta{
		Device:     device,
		ConfigType: configType,
		Timestamp:  time.Now(),
		Source:     source,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline metadata for %s (%s): %w", device, configType, err)
	}

	if err := os.WriteFile(s.metaPath(device, configType), data, fileMode); err != nil {
		return fmt.Errorf("failed to write baseline metadata for %s (%s): %w", device, configType, err)
	}

	s.log.Info().
		Str("device", device).
		Str("config_type", string(configType)).
		Msg("Source of truth config saved")

	return nil
}

// Load returns the baseline text for the key, or ErrNotFound when none has
// been saved yet.
func (s *Store) Load(device string, configType models.ConfigType) (string, error) {
	data, err := os.ReadFile(s.configPath(device, configType))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s (%s)", ErrNotFound, device, configType)
	}

	if err != nil {
		return "", fmt.Errorf("failed to read baseline for %s (%s): %w", device, configType, err)
	}

	return string(data), nil
}

// Meta returns the metadata record saved alongside the baseline.
func (s *Store) Meta(device string, configType models.ConfigType) (*models.BaselineMeta, error) {
	data, err := os.ReadFile(s.metaPath(device, configType))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, device, configType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read baseline metadata for %s (%s): %w", device, configType, err)
	}

	var meta models.BaselineMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse baseline metadata for %s (%s): %w", device, configType, err)
	}

	return &meta, nil
}

func (s *Store) configPath(device string, configType models.ConfigType) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.txt", device, configType))
}

func (s *Store) metaPath(device string, configType models.ConfigType) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_metadata.json", device, configType))
}
