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

package nautobot

// DeviceResponse is the Nautobot /api/dcim/devices/ listing payload.
type DeviceResponse struct {
	Count   int      `json:"count"`
	Results []Device `json:"results"`
}

// Device is a single Nautobot device record. Nautobot uses UUID string IDs
// where NetBox uses integers.
type Device struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Name       string `json:"name"`
	Display    string `json:"display"`
	Serial     string `json:"serial"`
	AssetTag   string `json:"asset_tag"`
	DeviceType struct {
		Model        string `json:"model"`
		Manufacturer struct {
			Name string `json:"name"`
		} `json:"manufacturer"`
	} `json:"device_type"`
	DeviceRole struct {
		Name string `json:"name"`
	} `json:"device_role"`
	Site struct {
		Name string `json:"name"`
	} `json:"site"`
	Status struct {
		Value string `json:"value"`
	} `json:"status"`
	PrimaryIP4 struct {
		Address string `json:"address"`
	} `json:"primary_ip4"`
}
