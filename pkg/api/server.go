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

// Package api provides the HTTP API server for driftwatch.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftwatch/driftwatch/pkg/baseline"
	"github.com/driftwatch/driftwatch/pkg/core"
	"github.com/driftwatch/driftwatch/pkg/inventory"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/models"
	"github.com/driftwatch/driftwatch/pkg/report"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server exposes the driftwatch operations over HTTP.
type Server struct {
	svc        *core.Service
	router     *mux.Router
	httpServer *http.Server
	log        logger.Logger
}

// NewServer builds the router. A nil gatherer disables the /metrics route.
func NewServer(svc *core.Service, apiKey string, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		log:    log.WithComponent("api"),
	}

	s.router.Use(requestIDMiddleware, commonMiddleware)

	s.router.HandleFunc("/api/health", s.getHealth).Methods(http.MethodGet, http.MethodOptions)

	if gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(apiKeyMiddleware(apiKey))

	protected.HandleFunc("/inventory", s.getInventory).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/devices", s.postDevice).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/devices/{name}", s.deleteDevice).Methods(http.MethodDelete, http.MethodOptions)
	protected.HandleFunc("/groups", s.getGroups).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/groups/{name}/devices", s.getGroupDevices).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/sync/{source}", s.postSync).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/validate", s.postValidate).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/validate/history", s.getHistory).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/compare/{device}/{config_type}", s.getCompare).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/baseline/{device}/{config_type}", s.postBaseline).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/reports", s.getReports).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/reports/generate", s.postGenerateReport).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/reports/{id}", s.getReport).Methods(http.MethodGet, http.MethodOptions)

	return s
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.log.Info().Str("addr", addr).Msg("Starting HTTP API")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "driftwatch",
	})
}

func (s *Server) getInventory(w http.ResponseWriter, _ *http.Request) {
	inv, err := s.svc.GetInventory()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]*models.Inventory{"inventory": inv})
}

type deviceRequest struct {
	Name       string            `json:"name"`
	Hostname   string            `json:"hostname"`
	Groups     []string          `json:"groups"`
	Vendor     string            `json:"vendor"`
	DeviceType string            `json:"device_type"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func (s *Server) postDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Name == "" || req.Hostname == "" {
		s.writeErrorMessage(w, http.StatusBadRequest, "name and hostname are required")
		return
	}

	if err := s.svc.AddDevice(req.Name, req.Hostname, req.Groups, req.Vendor, req.DeviceType, req.Extra); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"device": req.Name})
}

func (s *Server) deleteDevice(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := s.svc.RemoveDevice(name); err != nil {
		if errors.Is(err, inventory.ErrDeviceNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}

		s.writeError(w, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"removed": name})
}

func (s *Server) getGroups(w http.ResponseWriter, _ *http.Request) {
	groups, err := s.svc.DeviceGroups()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]string{"groups": groups})
}

func (s *Server) getGroupDevices(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["name"]

	devices, err := s.svc.DevicesByGroup(group)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]string{"devices": devices})
}

type syncRequest struct {
	APIToken string `json:"api_token,omitempty"`
}

func (s *Server) postSync(w http.ResponseWriter, r *http.Request) {
	source := mux.Vars(r)["source"]

	var req syncRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	count, err := s.svc.SyncFrom(r.Context(), source, req.APIToken)
	if err != nil {
		if errors.Is(err, inventory.ErrUnknownSource) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}

		s.writeError(w, http.StatusBadGateway, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"device_count": count})
}

type validateRequest struct {
	DeviceGroup string `json:"device_group"`
	ConfigType  string `json:"config_type"`
	DryRun      *bool  `json:"dry_run,omitempty"`
}

func (s *Server) postValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.DeviceGroup == "" {
		req.DeviceGroup = "all"
	}

	if req.ConfigType == "" {
		req.ConfigType = models.ConfigTypeAll
	}

	// dry_run defaults true for parity with the original API; the flag is
	// a documented no-op either way.
	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	batch, err := s.svc.ValidateConfigurations(r.Context(), req.DeviceGroup, req.ConfigType, dryRun)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      batch.ID,
		"results": batch.Results,
	})
}

func (s *Server) getHistory(w http.ResponseWriter, _ *http.Request) {
	history, err := s.svc.ValidationHistory()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (s *Server) getCompare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := s.svc.CompareOne(r.Context(), vars["device"], models.ConfigType(vars["config_type"]))
	if err != nil {
		if errors.Is(err, inventory.ErrDeviceNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}

		s.writeError(w, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) postBaseline(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	device := vars["device"]
	configType := models.ConfigType(vars["config_type"])

	if err := s.svc.SaveBaseline(r.Context(), device, configType); err != nil {
		if errors.Is(err, inventory.ErrDeviceNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}

		s.writeError(w, http.StatusBadGateway, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"device":      device,
		"config_type": string(configType),
		"status":      "saved",
	})
}

func (s *Server) getReports(w http.ResponseWriter, _ *http.Request) {
	reports, err := s.svc.ListReports()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]report.Report{"reports": reports})
}

type generateReportRequest struct {
	DeviceGroup string `json:"device_group"`
	ConfigType  string `json:"config_type"`
	Format      string `json:"format"`
}

func (s *Server) postGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.DeviceGroup == "" {
		req.DeviceGroup = "all"
	}

	if req.ConfigType == "" {
		req.ConfigType = models.ConfigTypeAll
	}

	if req.Format == "" {
		req.Format = string(report.FormatJSON)
	}

	batch, err := s.svc.ValidateConfigurations(r.Context(), req.DeviceGroup, req.ConfigType, true)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	ref, err := s.svc.GenerateReport(batch, report.Format(req.Format))
	if err != nil {
		if errors.Is(err, report.ErrUnsupportedFormat) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}

		s.writeError(w, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(w, http.StatusOK, ref)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	content, err := s.svc.GetReport(id)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) || errors.Is(err, baseline.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}

		s.writeError(w, http.StatusInternalServerError, err)

		return
	}

	s.writeJSON(w, http.StatusOK, content)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
