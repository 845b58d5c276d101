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

// Package nautobot fetches the device listing from a Nautobot instance and
// maps it into the driftwatch inventory shape. Nautobot's device API is a
// near-clone of NetBox's; the notable difference is that the primary
// address lives under primary_ip4 rather than primary_ip.
package nautobot

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/driftwatch/driftwatch/pkg/inventory"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

var errUnexpectedStatusCode = errors.New("unexpected status code")

// Integration pulls devices from Nautobot. Single-page listings only.
type Integration struct {
	Config *models.SourceConfig
	Logger logger.Logger
}

// NewIntegration builds a Nautobot integration for the inventory syncer.
func NewIntegration(cfg *models.SourceConfig, log logger.Logger) inventory.Integration {
	return &Integration{
		Config: cfg,
		Logger: log.WithComponent("nautobot"),
	}
}

// FetchDevices retrieves the Nautobot device listing and converts it into
// inventory device records.
func (n *Integration) FetchDevices(ctx context.Context) (map[string]models.Device, error) {
	url := n.Config.Endpoint + "/api/dcim/devices/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Token "+n.Config.Credentials["api_token"])
	req.Header.Set("Accept", "application/json")

	//nolint:gosec // insecure TLS is an explicit per-source opt-in
	client := &http.Client{
		Timeout: time.Duration(n.Config.Timeout),
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: n.Config.InsecureSkipVerify,
			},
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			n.Logger.Warn().Err(cerr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatusCode, resp.StatusCode)
	}

	var deviceResp DeviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&deviceResp); err != nil {
		return nil, err
	}

	devices := n.mapDevices(deviceResp)

	n.Logger.Info().Int("device_count", len(devices)).Msg("Fetched devices from Nautobot")

	return devices, nil
}

func (n *Integration) mapDevices(deviceResp DeviceResponse) map[string]models.Device {
	devices := make(map[string]models.Device, len(deviceResp.Results))

	for i := range deviceResp.Results {
		device := &deviceResp.Results[i]

		if device.Name == "" {
			continue
		}

		ipAddress := stripCIDR(device.PrimaryIP4.Address)
		manufacturer := strings.ToLower(device.DeviceType.Manufacturer.Name)
		role := strings.ToLower(device.DeviceRole.Name)

		var groups []string
		if role != "" && manufacturer != "" {
			groups = []string{role, manufacturer}
		}

		hostname := ipAddress
		if hostname == "" {
			hostname = device.Display
		}

		devices[device.Name] = models.Device{
			Name:     device.Name,
			Hostname: hostname,
			Groups:   groups,
			Data: models.DeviceData{
				Vendor:     manufacturer,
				DeviceType: inventory.DriverForManufacturer(manufacturer),
				Extra: map[string]string{
					"site":         device.Site.Name,
					"status":       device.Status.Value,
					"serial":       device.Serial,
					"asset_tag":    device.AssetTag,
					"nautobot_id":  device.ID,
					"nautobot_url": device.URL,
				},
			},
		}
	}

	return devices
}

func stripCIDR(address string) string {
	if address == "" {
		return ""
	}

	if idx := strings.IndexByte(address, '/'); idx >= 0 {
		return address[:idx]
	}

	return address
}
