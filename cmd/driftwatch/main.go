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

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/driftwatch/driftwatch/pkg/api"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/core"
	"github.com/driftwatch/driftwatch/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/driftwatch/driftwatch.json", "Path to driftwatch config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	if err := config.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return err
	}

	lg, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()

	svc, err := core.New(&cfg, registry, lg)
	if err != nil {
		return err
	}

	server := api.NewServer(svc, cfg.APIKey, registry, lg)

	errCh := make(chan error, 1)

	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	lg.Info().Str("listen_addr", cfg.ListenAddr).Msg("Starting driftwatch service")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("Shutting down")

	return server.Shutdown(context.Background())
}
