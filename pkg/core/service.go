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

// Package core wires the driftwatch components and exposes the operations
// consumed by the API layer.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/driftwatch/driftwatch/pkg/baseline"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/gateway"
	"github.com/driftwatch/driftwatch/pkg/gateway/sshgw"
	"github.com/driftwatch/driftwatch/pkg/inventory"
	"github.com/driftwatch/driftwatch/pkg/inventory/integrations/nautobot"
	"github.com/driftwatch/driftwatch/pkg/inventory/integrations/netbox"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
	"github.com/driftwatch/driftwatch/pkg/report"
	"github.com/driftwatch/driftwatch/pkg/validate"
)

// baselineSourceManual tags baselines created by an explicit operator
// action, the only way baselines come into existence.
const baselineSourceManual = "manual"

// Service is the driftwatch application: inventory, baselines, drift
// detection, validation orchestration and reporting behind one facade.
type Service struct {
	store     *inventory.FileStore
	syncer    *inventory.Syncer
	baselines *baseline.Store
	gateway   gateway.Gateway
	detector  *drift.Detector
	validator *validate.Validator
	reports   *report.Generator
	log       logger.Logger
}

// New wires a Service from configuration. The prometheus registerer may be
// nil to disable metrics.
func New(cfg *config.Config, reg prometheus.Registerer, log logger.Logger) (*Service, error) {
	store, err := inventory.NewFileStore(cfg.InventoryDir, log)
	if err != nil {
		return nil, err
	}

	inv, err := store.Load()
	if err != nil {
		return nil, err
	}

	gw := sshgw.New(sshgw.Config{
		Timeout: time.Duration(cfg.Gateway.Timeout),
		Port:    cfg.Gateway.Port,
	}, inv.Defaults, log)

	return NewWithGateway(cfg, gw, reg, log)
}

// NewWithGateway wires a Service around an externally supplied device
// gateway.
func NewWithGateway(cfg *config.Config, gw gateway.Gateway, reg prometheus.Registerer, log logger.Logger) (*Service, error) {
	store, err := inventory.NewFileStore(cfg.InventoryDir, log)
	if err != nil {
		return nil, err
	}

	baselines, err := baseline.NewStore(cfg.ConfigDir, log)
	if err != nil {
		return nil, err
	}

	detector := drift.NewDetector(gw, baselines, log)

	var metrics validate.Metrics
	if reg != nil {
		metrics = validate.NewPrometheusMetrics(reg)
	}

	validator, err := validate.NewValidator(store, detector, cfg.ConfigDir, metrics, log)
	if err != nil {
		return nil, err
	}

	reports, err := report.NewGenerator(cfg.ReportsDir, log)
	if err != nil {
		return nil, err
	}

	registry := map[string]inventory.IntegrationFactory{
		"netbox":   netbox.NewIntegration,
		"nautobot": nautobot.NewIntegration,
	}

	return &Service{
		store:     store,
		syncer:    inventory.NewSyncer(store, cfg.Sources, registry, log),
		baselines: baselines,
		gateway:   gw,
		detector:  detector,
		validator: validator,
		reports:   reports,
		log:       log.WithComponent("core"),
	}, nil
}

// GetInventory returns the full device registry.
func (s *Service) GetInventory() (*models.Inventory, error) {
	return s.store.Load()
}

// DeviceGroups returns the group names referenced by any device.
func (s *Service) DeviceGroups() ([]string, error) {
	return s.store.GroupNames()
}

// DevicesByGroup returns the device names in a group.
func (s *Service) DevicesByGroup(group string) ([]string, error) {
	return s.store.DevicesByGroup(group)
}

// AddDevice inserts or replaces a device in the registry.
func (s *Service) AddDevice(name, hostname string, groups []string, vendor, deviceType string, extra map[string]string) error {
	return s.store.AddDevice(name, hostname, groups, vendor, deviceType, extra)
}

// RemoveDevice deletes a device; inventory.ErrDeviceNotFound reports an
// absent name.
func (s *Service) RemoveDevice(name string) error {
	return s.store.RemoveDevice(name)
}

// SyncFrom replaces the device registry from a configured external source.
// An empty token uses the credentials configured for the source.
func (s *Service) SyncFrom(ctx context.Context, source, apiToken string) (int, error) {
	return s.syncer.SyncWithToken(ctx, source, apiToken)
}

// ValidateConfigurations runs a validation batch over the selected group
// and config-type.
func (s *Service) ValidateConfigurations(ctx context.Context, group, configType string, dryRun bool) (*models.ValidationBatch, error) {
	return s.validator.Run(ctx, group, configType, dryRun)
}

// ValidationHistory lists persisted batches, newest first.
func (s *Service) ValidationHistory() ([]validate.HistoryEntry, error) {
	return s.validator.History()
}

// CompareOne runs a single device/config-type comparison without
// persisting a batch.
func (s *Service) CompareOne(ctx context.Context, device string, configType models.ConfigType) (*models.ValidationResult, error) {
	dev, err := s.lookupDevice(device)
	if err != nil {
		return nil, err
	}

	return s.detector.Compare(ctx, dev, configType), nil
}

// SaveBaseline captures the device's current configuration as the source
// of truth for the given config-type.
func (s *Service) SaveBaseline(ctx context.Context, device string, configType models.ConfigType) error {
	dev, err := s.lookupDevice(device)
	if err != nil {
		return err
	}

	configs, err := s.gateway.Fetch(ctx, dev, []models.ConfigType{configType})
	if err != nil {
		return fmt.Errorf("failed to fetch %s config from %s: %w", configType, device, err)
	}

	text := configs[configType]
	if text == "" {
		return fmt.Errorf("no %s configuration found for %s", configType, device)
	}

	return s.baselines.Save(device, configType, text, baselineSourceManual)
}

// GenerateReport renders a batch in the requested encoding.
func (s *Service) GenerateReport(batch *models.ValidationBatch, format report.Format) (*report.Report, error) {
	return s.reports.Generate(batch, format)
}

// ListReports lists rendered artifacts, newest first.
func (s *Service) ListReports() ([]report.Report, error) {
	return s.reports.List()
}

// GetReport fetches one artifact by ID.
func (s *Service) GetReport(id string) (*report.Content, error) {
	return s.reports.Get(id)
}

func (s *Service) lookupDevice(name string) (*models.Device, error) {
	inv, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	dev, ok := inv.Devices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", inventory.ErrDeviceNotFound, name)
	}

	return &dev, nil
}
