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

// Package inventory implements the file-backed device registry and its
// synchronization from external asset-management sources.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const (
	hostsFile    = "hosts.yaml"
	groupsFile   = "groups.yaml"
	defaultsFile = "defaults.yaml"

	fileMode = 0o600
	dirMode  = 0o755
)

// ErrDeviceNotFound is returned by RemoveDevice for an absent device name.
// Callers treat it as a recoverable "not found" outcome, not a failure.
var ErrDeviceNotFound = errors.New("device not found in inventory")

// FileStore persists the device registry as three independent YAML records
// (hosts, groups, connection defaults) under a single directory.
//
// A mutex guards every load-mutate-save cycle, closing the race window the
// original flat-file design left open. Concurrent processes are still not
// coordinated; the store assumes a single operator process.
type FileStore struct {
	dir string
	mu  sync.Mutex
	log logger.Logger
}

// NewFileStore opens the registry at dir, creating it and seeding a default
// inventory on first use so downstream components always have at least one
// valid target.
func NewFileStore(dir string, log logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create inventory dir: %w", err)
	}

	s := &FileStore{
		dir: dir,
		log: log.WithComponent("inventory"),
	}

	if err := s.seedDefaults(); err != nil {
		return nil, err
	}

	return s, nil
}

// Load reads the three registry records. A missing record yields an empty
// container for that record; only unreadable or malformed files fail the
// load.
func (s *FileStore) Load() (*models.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked()
}

func (s *FileStore) loadLocked() (*models.Inventory, error) {
	inv := &models.Inventory{
		Devices: make(map[string]models.Device),
		Groups:  make(map[string]models.Group),
	}

	if err := s.readYAML(hostsFile, &inv.Devices); err != nil {
		return nil, err
	}

	// The hosts record stores devices keyed by name; stamp the key back
	// onto each record so callers never see a nameless device.
	for name, dev := range inv.Devices {
		dev.Name = name
		inv.Devices[name] = dev
	}

	if err := s.readYAML(groupsFile, &inv.Groups); err != nil {
		return nil, err
	}

	if err := s.readYAML(defaultsFile, &inv.Defaults); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *FileStore) readYAML(name string, dst interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return nil
}

// SaveDevices atomically replaces the persisted device set. Last write wins
// between racing processes; in-process callers are serialized by the store
// mutex.
func (s *FileStore) SaveDevices(devices map[string]models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveDevicesLocked(devices)
}

func (s *FileStore) saveDevicesLocked(devices map[string]models.Device) error {
	if err := s.writeYAML(hostsFile, devices); err != nil {
		return err
	}

	s.log.Info().Int("device_count", len(devices)).Msg("Hosts inventory saved")

	return nil
}

// SaveGroups replaces the persisted group set.
func (s *FileStore) SaveGroups(groups map[string]models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeYAML(groupsFile, groups)
}

// SaveDefaults replaces the persisted connection defaults.
func (s *FileStore) SaveDefaults(defaults models.ConnectionDefaults) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeYAML(defaultsFile, defaults)
}

// writeYAML writes via a temp file and rename so readers never observe a
// partially written record.
func (s *FileStore) writeYAML(name string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}

// AddDevice inserts or replaces a single device via load-mutate-save.
func (s *FileStore) AddDevice(name, hostname string, groups []string, vendor, deviceType string, extra map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.loadLocked()
	if err != nil {
		return err
	}

	inv.Devices[name] = models.Device{
		Name:     name,
		Hostname: hostname,
		Groups:   groups,
		Data: models.DeviceData{
			Vendor:     vendor,
			DeviceType: deviceType,
			Extra:      extra,
		},
	}

	if err := s.saveDevicesLocked(inv.Devices); err != nil {
		return err
	}

	s.log.Info().Str("device", name).Msg("Device added to inventory")

	return nil
}

// RemoveDevice deletes a single device. An absent name reports
// ErrDeviceNotFound without touching storage.
func (s *FileStore) RemoveDevice(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.loadLocked()
	if err != nil {
		return err
	}

	if _, ok := inv.Devices[name]; !ok {
		s.log.Warn().Str("device", name).Msg("Device not found in inventory")
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, name)
	}

	delete(inv.Devices, name)

	if err := s.saveDevicesLocked(inv.Devices); err != nil {
		return err
	}

	s.log.Info().Str("device", name).Msg("Device removed from inventory")

	return nil
}

// GroupNames returns the sorted set of group names referenced by any device.
func (s *FileStore) GroupNames() ([]string, error) {
	inv, err := s.Load()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})

	for _, dev := range inv.Devices {
		for _, g := range dev.Groups {
			seen[g] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for g := range seen {
		names = append(names, g)
	}

	sort.Strings(names)

	return names, nil
}

// DevicesByGroup returns the sorted names of devices that are members of the
// named group.
func (s *FileStore) DevicesByGroup(group string) ([]string, error) {
	inv, err := s.Load()
	if err != nil {
		return nil, err
	}

	var names []string

	for name := range inv.Devices {
		dev := inv.Devices[name]
		if dev.InGroup(group) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names, nil
}
