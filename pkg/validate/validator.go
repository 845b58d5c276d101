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

// Package validate orchestrates drift comparisons across a device group and
// persists the resulting batches.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/inventory"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const (
	// GroupAll selects every device regardless of group membership.
	GroupAll = "all"

	batchIDFormat = "20060102_150405"
	fileMode      = 0o600
	dirMode       = 0o755
)

// Validator expands a group selector into a device list, runs the drift
// detector across every (device, config-type) pair, and persists the
// aggregate result set.
type Validator struct {
	store    *inventory.FileStore
	detector *drift.Detector
	dir      string // validation batches live here
	metrics  Metrics
	log      logger.Logger
}

// NewValidator wires an orchestrator. A nil metrics falls back to no-op.
func NewValidator(store *inventory.FileStore, detector *drift.Detector, dir string, metrics Metrics, log logger.Logger) (*Validator, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create results dir: %w", err)
	}

	if metrics == nil {
		metrics = &NoOpMetrics{}
	}

	return &Validator{
		store:    store,
		detector: detector,
		dir:      dir,
		metrics:  metrics,
		log:      log.WithComponent("validate"),
	}, nil
}

// Run validates every selected device against every selected config-type.
//
// The dryRun flag is accepted for interface compatibility and changes
// nothing: the pipeline only reads, so there is no destructive action to
// gate. A total failure before any device is processed degrades to a
// single sentinel result for device "unknown" rather than an empty batch.
func (v *Validator) Run(ctx context.Context, group, configType string, dryRun bool) (*models.ValidationBatch, error) {
	start := time.Now()
	v.metrics.RecordRun(group, configType)

	batch := &models.ValidationBatch{
		RunAt: start,
		ID:    start.Format(batchIDFormat),
	}

	devices, err := v.resolveDevices(group)
	if err != nil {
		v.log.Error().Err(err).Str("group", group).Msg("Validation failed")

		batch.Results = []*models.ValidationResult{sentinelResult(err)}
		v.metrics.RecordResult(batch.Results[0])

		return batch, v.persist(batch)
	}

	configTypes := expandConfigTypes(configType)

	for i := range devices {
		device := &devices[i]

		v.log.Info().
			Str("device", device.Name).
			Str("group", group).
			Bool("dry_run", dryRun).
			Msg("Validating device")

		for _, ct := range configTypes {
			result := v.detector.Compare(ctx, device, ct)
			batch.Results = append(batch.Results, result)
			v.metrics.RecordResult(result)
		}
	}

	v.metrics.RecordRunDuration(time.Since(start))

	return batch, v.persist(batch)
}

// resolveDevices returns the selected devices in stable name order, so
// batch output is reproducible independent of map iteration.
func (v *Validator) resolveDevices(group string) ([]models.Device, error) {
	inv, err := v.store.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(inv.Devices))
	for name := range inv.Devices {
		names = append(names, name)
	}

	sort.Strings(names)

	devices := make([]models.Device, 0, len(names))

	for _, name := range names {
		dev := inv.Devices[name]
		if group == GroupAll || dev.InGroup(group) {
			devices = append(devices, dev)
		}
	}

	return devices, nil
}

// expandConfigTypes maps the "all" selector to running and startup.
// Candidate is deliberately left out of the expansion.
func expandConfigTypes(configType string) []models.ConfigType {
	if configType == models.ConfigTypeAll {
		return []models.ConfigType{models.ConfigTypeRunning, models.ConfigTypeStartup}
	}

	return []models.ConfigType{models.ConfigType(configType)}
}

func sentinelResult(err error) *models.ValidationResult {
	msg := fmt.Sprintf("Validation error: %v", err)

	return &models.ValidationResult{
		Device:        "unknown",
		Status:        models.StatusError,
		Message:       err.Error(),
		DriftDetected: false,
		Issues:        []string{msg},
		Timestamp:     time.Now(),
	}
}

// persist writes the batch results under a timestamp-derived identifier.
func (v *Validator) persist(batch *models.ValidationBatch) error {
	data, err := json.MarshalIndent(batch.Results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal validation results: %w", err)
	}

	path := filepath.Join(v.dir, fmt.Sprintf("validation_results_%s.json", batch.ID))

	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("failed to save validation results: %w", err)
	}

	v.log.Info().Str("file", path).Msg("Validation results saved")

	return nil
}
