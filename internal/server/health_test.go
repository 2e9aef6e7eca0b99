package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthTestContext(t *testing.T, rootFolderID string) *ServerContext {
	t.Helper()

	sc, err := NewServerContext(context.Background(), Config{RootFolderID: rootFolderID})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(newHealthTestContext(t, "root-folder"))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestReadinessHandler(t *testing.T) {
	h := NewHealthChecker(newHealthTestContext(t, "root-folder"))

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["drive_root"])
}

func TestReadinessHandler_NotReady(t *testing.T) {
	h := NewHealthChecker(newHealthTestContext(t, "root-folder"))
	h.SetReady(false)

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Status)
	assert.Equal(t, "not ready", body.Checks["ready"])
}

func TestReadinessHandler_MissingDriveRoot(t *testing.T) {
	h := NewHealthChecker(newHealthTestContext(t, ""))

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body.Checks["drive_root"])
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newHealthTestContext(t, "root-folder")
	sc.Sessions().Get("session-1")
	h := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.ActiveSessions)
	assert.True(t, body.DriveRoot)
	assert.NotEmpty(t, body.Uptime)
}
