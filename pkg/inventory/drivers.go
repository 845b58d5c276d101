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

package inventory

import "strings"

// DefaultDriver is the fallback driver for manufacturers that match no
// known pattern. Unknown vendors are silently tagged "ios"; operators need
// to correct the driver by hand for such devices.
const DefaultDriver = "ios"

type driverMapping struct {
	pattern string
	driver  string
}

// driverMappings is evaluated in declaration order, first match wins.
// Order matters: a manufacturer string can match more than one pattern.
var driverMappings = []driverMapping{
	{"cisco", "ios"},
	{"juniper", "junos"},
	{"arista", "eos"},
	{"hp", "procurve"},
	{"huawei", "vrp"},
	{"fortinet", "fortios"},
	{"palo alto", "panos"},
	{"mikrotik", "ros"},
	{"f5", "f5"},
	{"nxos", "nxos"},
	{"iosxr", "iosxr"},
}

// DriverForManufacturer maps a manufacturer name to its automation driver by
// case-insensitive substring match.
func DriverForManufacturer(manufacturer string) string {
	m := strings.ToLower(manufacturer)

	for _, dm := range driverMappings {
		if strings.Contains(m, dm.pattern) {
			return dm.driver
		}
	}

	return DefaultDriver
}
