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

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const defaultGatewayTimeout = 30 * time.Second

var errMissingSourceFields = errors.New("source missing required fields (type, endpoint)")

// GatewayConfig controls how live device configuration is fetched.
type GatewayConfig struct {
	Timeout models.Duration `json:"timeout,omitempty"` // ceiling per device fetch
	Port    int             `json:"port,omitempty"`    // fallback SSH port when defaults omit one
}

// Config is the driftwatch service configuration.
type Config struct {
	ListenAddr   string                          `json:"listen_addr"`
	APIKey       string                          `json:"api_key,omitempty"`
	InventoryDir string                          `json:"inventory_dir"`
	ConfigDir    string                          `json:"config_dir"`  // baselines and validation results
	ReportsDir   string                          `json:"reports_dir"` // rendered report artifacts
	Gateway      GatewayConfig                   `json:"gateway"`
	Sources      map[string]*models.SourceConfig `json:"sources,omitempty"` // e.g. "netbox": {...}
	Logging      logger.Config                   `json:"logging"`
}

// Validate fills defaults and rejects incomplete source definitions.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8082"
	}

	if c.InventoryDir == "" {
		c.InventoryDir = "/var/lib/driftwatch/inventory"
	}

	if c.ConfigDir == "" {
		c.ConfigDir = "/var/lib/driftwatch/configs"
	}

	if c.ReportsDir == "" {
		c.ReportsDir = "/var/lib/driftwatch/reports"
	}

	if time.Duration(c.Gateway.Timeout) == 0 {
		c.Gateway.Timeout = models.Duration(defaultGatewayTimeout)
	}

	for name, src := range c.Sources {
		if src.Type == "" || src.Endpoint == "" {
			return fmt.Errorf("source %s: %w", name, errMissingSourceFields)
		}

		if time.Duration(src.Timeout) == 0 {
			src.Timeout = models.Duration(defaultGatewayTimeout)
		}
	}

	return nil
}
