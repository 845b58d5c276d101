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

// Package models defines the shared data types for driftwatch.
package models

// Device is a single managed network device. Devices are keyed by name in
// the inventory; the name is not repeated inside the persisted record.
type Device struct {
	Name     string     `json:"name" yaml:"-"`
	Hostname string     `json:"hostname" yaml:"hostname"`
	Groups   []string   `json:"groups" yaml:"groups"`
	Data     DeviceData `json:"data" yaml:"data"`
}

// DeviceData carries the known device attributes plus an open extension map
// for free-form fields (site, status, serial, external-system id/url, ...).
// The inline map keeps the persisted record flat, so extra fields sit next
// to vendor and device_type the way automation tooling expects.
type DeviceData struct {
	Vendor     string            `json:"vendor" yaml:"vendor"`
	DeviceType string            `json:"device_type" yaml:"device_type"`
	Extra      map[string]string `json:"extra,omitempty" yaml:",inline"`
}

// InGroup reports whether the device is a member of the named group.
// Matching is exact and case-sensitive.
func (d *Device) InGroup(group string) bool {
	for _, g := range d.Groups {
		if g == group {
			return true
		}
	}

	return false
}

// Group holds shared metadata for a named device group. Group data is used
// as shared defaults by convention; nothing enforces inheritance, and
// removing a group does not clean up device references to it.
type Group struct {
	Data map[string]string `json:"data" yaml:"data"`
}

// ConnectionDefaults is the single global record of fallback connection
// parameters applied when a device or group omits them.
type ConnectionDefaults struct {
	Username          string                 `json:"username" yaml:"username"`
	Password          string                 `json:"password" yaml:"password"`
	Port              int                    `json:"port" yaml:"port"`
	Platform          string                 `json:"platform" yaml:"platform"`
	ConnectionOptions map[string]interface{} `json:"connection_options,omitempty" yaml:"connection_options,omitempty"`
}

// Inventory is the full device registry: hosts, groups and connection
// defaults, loaded from three independent records.
type Inventory struct {
	Devices  map[string]Device  `json:"hosts"`
	Groups   map[string]Group   `json:"groups"`
	Defaults ConnectionDefaults `json:"defaults"`
}
