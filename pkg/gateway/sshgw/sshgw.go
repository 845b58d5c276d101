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

// Package sshgw implements the device gateway over plain SSH, running the
// per-driver show command for each requested configuration state.
package sshgw

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/driftwatch/driftwatch/pkg/gateway"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
)

const (
	defaultPort    = 22
	defaultTimeout = 30 * time.Second
)

// Config controls connection behavior shared by all devices.
type Config struct {
	Timeout time.Duration // ceiling for dial plus command execution
	Port    int           // used when neither device nor defaults name a port
}

// Gateway fetches configuration over SSH using the inventory connection
// defaults, overridden per device by the username/password/port keys in the
// device's extra data.
type Gateway struct {
	cfg      Config
	defaults models.ConnectionDefaults
	log      logger.Logger
}

// New builds an SSH gateway.
func New(cfg Config, defaults models.ConnectionDefaults, log logger.Logger) *Gateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	return &Gateway{
		cfg:      cfg,
		defaults: defaults,
		log:      log.WithComponent("sshgw"),
	}
}

// Fetch connects once and runs the show command for every requested
// config-type. A failure for any type fails the whole fetch.
func (g *Gateway) Fetch(ctx context.Context, device *models.Device, types []models.ConfigType) (map[models.ConfigType]string, error) {
	commands := commandsForDriver(device.Data.DeviceType)

	// Resolve commands up front so an unsupported type fails before dialing.
	resolved := make(map[models.ConfigType]string, len(types))

	for _, t := range types {
		cmd, ok := commands[t]
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s)", gateway.ErrUnsupportedConfigType, t, device.Data.DeviceType)
		}

		resolved[t] = cmd
	}

	client, err := g.dial(ctx, device)
	if err != nil {
		return nil, err
	}

	defer func() {
		if cerr := client.Close(); cerr != nil {
			g.log.Debug().Err(cerr).Str("device", device.Name).Msg("SSH close failed")
		}
	}()

	configs := make(map[models.ConfigType]string, len(types))

	for _, t := range types {
		out, err := g.run(client, resolved[t])
		if err != nil {
			return nil, fmt.Errorf("%w: %s on %s: %w", gateway.ErrUnreachable, resolved[t], device.Name, err)
		}

		configs[t] = out
	}

	return configs, nil
}

func (g *Gateway) run(client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", err
	}

	defer func() {
		_ = session.Close()
	}()

	out, err := session.Output(cmd)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

func (g *Gateway) dial(ctx context.Context, device *models.Device) (*ssh.Client, error) {
	user, pass, port := g.credentials(device)
	addr := net.JoinHostPort(device.Hostname, strconv.Itoa(port))

	clientCfg := &ssh.ClientConfig{
		User:    user,
		Auth:    []ssh.AuthMethod{ssh.Password(pass)},
		Timeout: g.cfg.Timeout,
		// Host keys on network gear are not pre-distributed; the inventory
		// is the trust anchor.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
	}

	dialer := net.Dialer{Timeout: g.cfg.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gateway.ErrUnreachable, addr, err)
	}

	// Bound the handshake as well; a half-open device would otherwise hang
	// past the configured ceiling.
	if err := conn.SetDeadline(time.Now().Add(g.cfg.Timeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s: %w", gateway.ErrUnreachable, addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		_ = conn.Close()

		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("%w: %s: %w", gateway.ErrAuthFailed, addr, err)
		}

		return nil, fmt.Errorf("%w: %s: %w", gateway.ErrUnreachable, addr, err)
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %s: %w", gateway.ErrUnreachable, addr, err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// credentials resolves per-device overrides against the global connection
// defaults.
func (g *Gateway) credentials(device *models.Device) (user, pass string, port int) {
	user = g.defaults.Username
	pass = g.defaults.Password
	port = g.defaults.Port

	if v, ok := device.Data.Extra["username"]; ok && v != "" {
		user = v
	}

	if v, ok := device.Data.Extra["password"]; ok && v != "" {
		pass = v
	}

	if v, ok := device.Data.Extra["port"]; ok && v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	if port == 0 {
		port = g.cfg.Port
	}

	return user, pass, port
}
