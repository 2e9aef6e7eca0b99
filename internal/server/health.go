package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves the liveness and readiness probes for the HTTP
// transport. Readiness covers the two things the tools cannot work
// without: the server context still being up and a Drive root folder
// being configured.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker that reports ready until
// shutdown begins.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady overrides the readiness state, e.g. during draining.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server should receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) shuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

func (h *HealthChecker) driveConfigured() bool {
	return h.serverContext == nil || h.serverContext.RootFolderID() != ""
}

// HealthResponse is the JSON body for /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the JSON body for /healthz/detailed.
type DetailedHealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"active_sessions"`
	DriveRoot      bool   `json:"drive_root_configured"`
}

// LivenessHandler answers /healthz. Liveness only says the process is
// alive, so it never inspects dependencies.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz with per-check detail.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks := map[string]string{
			"ready":      healthStatusOK,
			"shutdown":   healthStatusOK,
			"drive_root": healthStatusOK,
		}
		ok := true

		if !h.ready.Load() {
			checks["ready"] = healthStatusNotReady
			ok = false
		}
		if h.shuttingDown() {
			checks["shutdown"] = healthStatusShuttingDown
			ok = false
		}
		if !h.driveConfigured() {
			checks["drive_root"] = healthStatusNotReady
			ok = false
		}

		response := HealthResponse{Status: healthStatusOK, Checks: checks}
		status := http.StatusOK
		if !ok {
			response.Status = healthStatusNotReady
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	})
}

// DetailedHealthHandler answers /healthz/detailed with uptime and the
// active session count.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := DetailedHealthResponse{
			Status:    healthStatusOK,
			Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
			DriveRoot: h.driveConfigured(),
		}
		if h.serverContext != nil {
			response.ActiveSessions = len(h.serverContext.Sessions().List())
		}

		status := http.StatusOK
		switch {
		case h.shuttingDown():
			response.Status = healthStatusShuttingDown
			status = http.StatusServiceUnavailable
		case !h.ready.Load():
			response.Status = healthStatusNotReady
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, response)
	})
}

// RegisterHealthEndpoints mounts the probe endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
