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

//go:generate mockgen -destination=mock_gateway.go -package=gateway github.com/driftwatch/driftwatch/pkg/gateway Gateway

// Package gateway defines the abstraction boundary over vendor-specific
// configuration retrieval protocols.
package gateway

import (
	"context"
	"errors"

	"github.com/driftwatch/driftwatch/pkg/models"
)

var (
	// ErrUnreachable covers connect and timeout failures against a device.
	ErrUnreachable = errors.New("device unreachable")

	// ErrAuthFailed covers credential rejection by a device.
	ErrAuthFailed = errors.New("device authentication failed")

	// ErrUnsupportedConfigType is returned when a driver has no way to
	// retrieve the requested configuration state.
	ErrUnsupportedConfigType = errors.New("unsupported config type for driver")
)

// Gateway fetches the requested configuration states from a device. The
// returned map holds one text per requested config-type; a failure for any
// type fails the whole fetch.
type Gateway interface {
	Fetch(ctx context.Context, device *models.Device, types []models.ConfigType) (map[models.ConfigType]string, error)
}
