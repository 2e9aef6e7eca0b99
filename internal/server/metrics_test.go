package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notariadigital/escribano/internal/instrumentation"
)

func newTestProvider(t *testing.T, enabled bool) *instrumentation.Provider {
	t.Helper()

	ctx := context.Background()
	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
		ServiceName:    "escribano-test",
		ServiceVersion: "0.0.0",
		Enabled:        enabled,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestNewMetricsServer(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9091",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	require.NoError(t, err)
	assert.Equal(t, ":9091", server.Addr())
}

func TestNewMetricsServer_DefaultAddr(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, server.Addr())
}

func TestNewMetricsServer_NilProvider(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{
		Addr:    ":9090",
		Enabled: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instrumentation provider is required")
}

func TestNewMetricsServer_DisabledProvider(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, false),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instrumentation provider is not enabled")
}

func TestMetricsServer_StartAndShutdown(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":0",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	require.NoError(t, err)

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestMetricsServer_ShutdownWithoutStart(t *testing.T) {
	server, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		Enabled:                 true,
		InstrumentationProvider: newTestProvider(t, true),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(ctx))
}
