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

import (
	"os"
	"path/filepath"

	"github.com/driftwatch/driftwatch/pkg/models"
)

// seedDefaults writes a starter inventory for any registry record that does
// not exist yet. This is a usability fallback so a fresh install always has
// at least one valid validation target; it never overwrites existing files.
func (s *FileStore) seedDefaults() error {
	if s.missing(hostsFile) {
		if err := s.writeYAML(hostsFile, defaultHosts()); err != nil {
			return err
		}
	}

	if s.missing(groupsFile) {
		if err := s.writeYAML(groupsFile, defaultGroups()); err != nil {
			return err
		}
	}

	if s.missing(defaultsFile) {
		if err := s.writeYAML(defaultsFile, defaultConnectionDefaults()); err != nil {
			return err
		}
	}

	return nil
}

func (s *FileStore) missing(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return os.IsNotExist(err)
}

func defaultHosts() map[string]models.Device {
	return map[string]models.Device{
		"rtr-01": {
			Hostname: "192.168.1.1",
			Groups:   []string{"routers", "cisco"},
			Data: models.DeviceData{
				Vendor:     "cisco",
				DeviceType: "ios",
				Extra: map[string]string{
					"username": "admin",
					"password": "admin123",
				},
			},
		},
		"sw-01": {
			Hostname: "192.168.1.2",
			Groups:   []string{"switches", "cisco"},
			Data: models.DeviceData{
				Vendor:     "cisco",
				DeviceType: "ios",
				Extra: map[string]string{
					"username": "admin",
					"password": "admin123",
				},
			},
		},
	}
}

func defaultGroups() map[string]models.Group {
	return map[string]models.Group{
		"routers": {
			Data: map[string]string{
				"device_type": "ios",
				"vendor":      "cisco",
			},
		},
		"switches": {
			Data: map[string]string{
				"device_type": "ios",
				"vendor":      "cisco",
			},
		},
		"cisco": {
			Data: map[string]string{
				"vendor":   "cisco",
				"platform": "ios",
			},
		},
	}
}

func defaultConnectionDefaults() models.ConnectionDefaults {
	return models.ConnectionDefaults{
		Username: "admin",
		Password: "admin123",
		Port:     22,
		Platform: "ios",
		ConnectionOptions: map[string]interface{}{
			"ssh": map[string]interface{}{
				"secret": "admin123",
			},
		},
	}
}
