/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phuonguno98/statpanel/internal/display"
	"github.com/phuonguno98/statpanel/internal/mode"
	"github.com/phuonguno98/statpanel/pkg/metrics"
	"github.com/phuonguno98/statpanel/pkg/version"
)

const (
	// MaxBodySize limits request bodies.
	MaxBodySize = 4 * 1024

	// RequestIDHeader carries the per-request ID.
	RequestIDHeader = "X-Request-ID"

	shutdownTimeout = 5 * time.Second
)

// Source provides the latest telemetry.
type Source interface {
	Read() (metrics.Snapshot, metrics.Thresholds, bool)
}

// ModeController exposes and changes the display mode.
type ModeController interface {
	Current() mode.Mode
	Handle(payload string) (mode.Mode, bool)
	Transitions() uint64
}

// FrameCounter reports render loop activity. It is optional.
type FrameCounter interface {
	FramesShown(kind display.Kind) uint64
	FramesSkipped() uint64
}

// Server is the optional status server.
type Server struct {
	source   Source
	modes    ModeController
	registry *prometheus.Registry
	logger   *slog.Logger
	router   *mux.Router
}

// NewServer creates a status server. frames may be nil.
func NewServer(source Source, modes ModeController, frames FrameCounter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(newPanelCollector(source, modes, frames))

	s := &Server{
		source:   source,
		modes:    modes,
		registry: registry,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/api/version", s.handleGetVersion).Methods("GET")
	s.router.HandleFunc("/api/snapshot", s.handleGetSnapshot).Methods("GET")
	s.router.HandleFunc("/api/mode", s.handleGetMode).Methods("GET")
	s.router.HandleFunc("/api/mode", s.handleSetMode).Methods("POST")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
}

// requestIDMiddleware tags every request with an ID, reusing the caller's when present.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"request_id", r.Header.Get(RequestIDHeader),
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.logger.Info("Status server stopped")
	return nil
}

// handleGetVersion returns version information from the version package.
func (s *Server) handleGetVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"date":    version.BuildDate,
	})
}

type boundsResponse struct {
	Warn *float64 `json:"warn,omitempty"`
	Crit *float64 `json:"crit,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

type snapshotResponse struct {
	Ready          bool                      `json:"ready"`
	Mode           string                    `json:"mode"`
	SampledAt      time.Time                 `json:"sampled_at"`
	Hostname       string                    `json:"hostname"`
	IPAddress      string                    `json:"ip_address"`
	LinkSpeedMbps  uint32                    `json:"link_speed_mbps"`
	CPULoad        float64                   `json:"cpu_load"`
	CPUClockMHz    float64                   `json:"cpu_clock_mhz"`
	CPUTempC       float64                   `json:"cpu_temp_c"`
	MemUsedBytes   uint64                    `json:"mem_used_bytes"`
	MemTotalBytes  uint64                    `json:"mem_total_bytes"`
	DiskUsedBytes  uint64                    `json:"disk_used_bytes"`
	DiskTotalBytes uint64                    `json:"disk_total_bytes"`
	NetDeltaBytes  uint64                    `json:"net_delta_bytes"`
	ProcessCount   uint32                    `json:"process_count"`
	Thresholds     map[string]boundsResponse `json:"thresholds"`
}

// handleGetSnapshot returns the latest telemetry and thresholds.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, t, ok := s.source.Read()

	resp := snapshotResponse{
		Ready:          ok,
		Mode:           s.modes.Current().String(),
		SampledAt:      snap.SampledAt,
		Hostname:       snap.Hostname,
		IPAddress:      snap.IPAddress,
		LinkSpeedMbps:  snap.LinkSpeedMbps,
		CPULoad:        snap.CPULoad,
		CPUClockMHz:    snap.CPUClockMHz,
		CPUTempC:       snap.CPUTempC,
		MemUsedBytes:   snap.MemUsedBytes,
		MemTotalBytes:  snap.MemTotalBytes,
		DiskUsedBytes:  snap.DiskUsedBytes,
		DiskTotalBytes: snap.DiskTotalBytes,
		NetDeltaBytes:  snap.NetDeltaBytes,
		ProcessCount:   snap.ProcessCount,
		Thresholds:     make(map[string]boundsResponse, len(t)),
	}
	for name, b := range t {
		resp.Thresholds[name] = boundsResponse{Warn: b.Warn, Crit: b.Crit, Max: b.Max}
	}

	s.writeJSON(w, resp)
}

type modeResponse struct {
	Mode        string `json:"mode"`
	Payload     string `json:"payload"`
	Transitions uint64 `json:"transitions"`
}

func (s *Server) modeResponse() modeResponse {
	m := s.modes.Current()
	return modeResponse{Mode: m.String(), Payload: m.Payload(), Transitions: s.modes.Transitions()}
}

// handleGetMode returns the current display mode.
func (s *Server) handleGetMode(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.modeResponse())
}

// handleSetMode applies a payload exactly as if it had arrived over MQTT.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if _, ok := s.modes.Handle(req.Payload); !ok {
		s.writeError(w, fmt.Sprintf("Invalid payload %q (must be %q or %q)", req.Payload, mode.PayloadStats, mode.PayloadIdle), http.StatusBadRequest)
		return
	}

	s.writeJSON(w, s.modeResponse())
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	}); err != nil {
		s.logger.Error("Failed to write error response", "error", err)
	}
}
