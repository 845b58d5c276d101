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

package sshgw

import "github.com/driftwatch/driftwatch/pkg/models"

// showCommands maps each driver to the command retrieving a given
// configuration state. A driver without an entry for a state cannot serve
// that config-type over SSH.
var showCommands = map[string]map[models.ConfigType]string{
	"ios": {
		models.ConfigTypeRunning: "show running-config",
		models.ConfigTypeStartup: "show startup-config",
	},
	"iosxr": {
		models.ConfigTypeRunning: "show running-config",
	},
	"nxos": {
		models.ConfigTypeRunning: "show running-config",
		models.ConfigTypeStartup: "show startup-config",
	},
	"eos": {
		models.ConfigTypeRunning: "show running-config",
		models.ConfigTypeStartup: "show startup-config",
	},
	"junos": {
		models.ConfigTypeRunning:   "show configuration",
		models.ConfigTypeCandidate: "show configuration | compare rollback 0",
	},
	"vrp": {
		models.ConfigTypeRunning: "display current-configuration",
		models.ConfigTypeStartup: "display saved-configuration",
	},
	"procurve": {
		models.ConfigTypeRunning: "show running-config",
		models.ConfigTypeStartup: "show config",
	},
	"ros": {
		models.ConfigTypeRunning: "/export",
	},
	"fortios": {
		models.ConfigTypeRunning: "show full-configuration",
	},
	"panos": {
		models.ConfigTypeRunning:   "show config running",
		models.ConfigTypeCandidate: "show config candidate",
	},
	"f5": {
		models.ConfigTypeRunning: "show running-config",
	},
}

// commandsForDriver returns the command set for a driver, falling back to
// the ios set for unknown drivers to mirror the inventory's vendor-mapping
// fallback.
func commandsForDriver(driver string) map[models.ConfigType]string {
	if cmds, ok := showCommands[driver]; ok {
		return cmds
	}

	return showCommands["ios"]
}
