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

// Package drift compares live device configuration against the stored
// source of truth.
package drift

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/driftwatch/driftwatch/pkg/baseline"
	"github.com/driftwatch/driftwatch/pkg/gateway"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

// Detector runs one comparison per (device, config-type) pair. Failures are
// encoded into the returned result rather than propagated, so a batch never
// aborts on a single device.
type Detector struct {
	gateway   gateway.Gateway
	baselines *baseline.Store
	log       logger.Logger
}

// NewDetector wires a detector against a device gateway and baseline store.
func NewDetector(gw gateway.Gateway, baselines *baseline.Store, log logger.Logger) *Detector {
	return &Detector{
		gateway:   gw,
		baselines: baselines,
		log:       log.WithComponent("drift"),
	}
}

// Compare fetches the live configuration and diffs it against the baseline.
//
// Configuration is treated as an unordered set of distinct lines: ordering
// and duplicate counts are deliberately ignored, tolerating reordering by
// the device OS at the cost of being blind to count-only changes. Callers
// depend on this exact semantics; do not tighten it.
func (d *Detector) Compare(ctx context.Context, device *models.Device, configType models.ConfigType) *models.ValidationResult {
	live, err := d.fetchLive(ctx, device, configType)
	if err != nil {
		d.log.Error().Err(err).
			Str("device", device.Name).
			Str("config_type", string(configType)).
			Msg("Failed to get config from device")

		return errorResult(device.Name, configType, err.Error())
	}

	sot, err := d.baselines.Load(device.Name, configType)
	if err != nil {
		if !errors.Is(err, baseline.ErrNotFound) {
			d.log.Error().Err(err).
				Str("device", device.Name).
				Str("config_type", string(configType)).
				Msg("Failed to load source of truth config")
		}

		// Missing baseline is an expected state, reported with a single
		// well-known issue string.
		return errorResult(device.Name, configType, baseline.ErrNotFound.Error())
	}

	liveLines := lineSet(live)
	sotLines := lineSet(sot)

	missing := difference(sotLines, liveLines)
	extra := difference(liveLines, sotLines)

	driftDetected := len(missing) > 0 || len(extra) > 0

	var issues []string

	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("Missing %d lines from source of truth", len(missing)))
	}

	if len(extra) > 0 {
		issues = append(issues, fmt.Sprintf("Extra %d lines not in source of truth", len(extra)))
	}

	return &models.ValidationResult{
		Device:        device.Name,
		ConfigType:    configType,
		Status:        models.StatusSuccess,
		DriftDetected: driftDetected,
		Issues:        issues,
		MissingLines:  missing,
		ExtraLines:    extra,
		Timestamp:     time.Now(),
	}
}

func (d *Detector) fetchLive(ctx context.Context, device *models.Device, configType models.ConfigType) (string, error) {
	configs, err := d.gateway.Fetch(ctx, device, []models.ConfigType{configType})
	if err != nil {
		return "", err
	}

	return configs[configType], nil
}

// errorResult builds the error-status result shape: drift is undefined when
// the comparison could not occur, so DriftDetected stays false and the
// message doubles as the single issue entry.
func errorResult(device string, configType models.ConfigType, message string) *models.ValidationResult {
	return &models.ValidationResult{
		Device:        device,
		ConfigType:    configType,
		Status:        models.StatusError,
		Message:       message,
		DriftDetected: false,
		Issues:        []string{message},
		Timestamp:     time.Now(),
	}
}

// lineSet splits text into its distinct lines after trimming the
// surrounding whitespace of the whole text. Individual lines are kept
// verbatim, including their leading indentation.
func lineSet(text string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		set[line] = struct{}{}
	}

	return set
}

// difference returns a−b as a sorted slice, so results are reproducible
// across runs.
func difference(a, b map[string]struct{}) []string {
	var out []string

	for line := range a {
		if _, ok := b[line]; !ok {
			out = append(out, line)
		}
	}

	sort.Strings(out)

	return out
}
