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

// Package netbox fetches the device listing from a NetBox instance and maps
// it into the driftwatch inventory shape.
package netbox

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

// Integration pulls devices from NetBox. A single request is assumed
// sufficient; paginated listings beyond the first page are not followed.
type Integration struct {
	Config *models.SourceConfig
	Logger logger.Logger
}

// NewIntegration builds a NetBox integration for the inventory syncer.
func NewIntegration(cfg *models.SourceConfig, log logger.Logger) inventory.Integration {
	return &Integration{
		Config: cfg,
		Logger: log.WithComponent("netbox"),
	}
}

// FetchDevices retrieves the NetBox device listing and converts it into
// inventory device records.
func (n *Integration) FetchDevices(ctx context.Context) (map[string]models.Device, error) {
	resp, err := n.fetchDevices(ctx)
	if err != nil {
		return nil, err
	}
	defer n.closeResponse(resp)

	deviceResp, err := decodeResponse(resp)
	if err != nil {
		return nil, err
	}

	devices := n.mapDevices(deviceResp)

	n.Logger.Info().Int("device_count", len(devices)).Msg("Fetched devices from NetBox")

	return devices, nil
}

// fetchDevices sends the HTTP request to the NetBox API.
func (n *Integration) fetchDevices(ctx context.Context) (*http.Response, error) {
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

	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %d", errUnexpectedStatusCode, resp.StatusCode)
	}

	return resp, nil
}

func (n *Integration) closeResponse(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		n.Logger.Warn().Err(err).Msg("Failed to close response body")
	}
}

func decodeResponse(resp *http.Response) (DeviceResponse, error) {
	var deviceResp DeviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&deviceResp); err != nil {
		return DeviceResponse{}, err
	}

	return deviceResp, nil
}

// mapDevices converts NetBox device records into the inventory shape.
// Devices without a name are skipped; the primary IP loses its CIDR suffix
// and falls back to the display name when absent.
func (n *Integration) mapDevices(deviceResp DeviceResponse) map[string]models.Device {
	devices := make(map[string]models.Device, len(deviceResp.Results))

	for i := range deviceResp.Results {
		device := &deviceResp.Results[i]

		if device.Name == "" {
			continue
		}

		ipAddress := stripCIDR(device.PrimaryIP.Address)
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
					"site":       device.Site.Name,
					"status":     device.Status.Value,
					"serial":     device.Serial,
					"asset_tag":  device.AssetTag,
					"netbox_id":  fmt.Sprintf("%d", device.ID),
					"netbox_url": device.URL,
				},
			},
		}
	}

	return devices
}

// stripCIDR drops the prefix length from an address like "10.0.0.1/24".
func stripCIDR(address string) string {
	if address == "" {
		return ""
	}

	if idx := strings.IndexByte(address, '/'); idx >= 0 {
		return address[:idx]
	}

	return address
}
