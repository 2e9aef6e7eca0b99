package instrumentation

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	// Clear environment to get defaults
	os.Unsetenv("OTEL_SERVICE_NAME")
	os.Unsetenv("INSTRUMENTATION_ENABLED")
	os.Unsetenv("METRICS_DETAILED_LABELS")

	config := DefaultConfig()

	if config.ServiceName != "escribano" {
		t.Errorf("expected ServiceName 'escribano', got %q", config.ServiceName)
	}

	if !config.Enabled {
		t.Error("expected Enabled to be true by default")
	}

	if config.PrometheusEndpoint != "/metrics" {
		t.Errorf("expected PrometheusEndpoint '/metrics', got %q", config.PrometheusEndpoint)
	}

	if config.DetailedLabels {
		t.Error("expected DetailedLabels to be false by default")
	}

	if !config.AuditLogging.Enabled {
		t.Error("expected AuditLogging.Enabled to be true by default")
	}

	if config.AuditLogging.IncludePII {
		t.Error("expected AuditLogging.IncludePII to be false by default")
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	// Set environment variables
	os.Setenv("OTEL_SERVICE_NAME", "test-service")
	os.Setenv("INSTRUMENTATION_ENABLED", "false")
	os.Setenv("METRICS_DETAILED_LABELS", "true")
	os.Setenv("AUDIT_LOGGING_ENABLED", "false")

	defer func() {
		os.Unsetenv("OTEL_SERVICE_NAME")
		os.Unsetenv("INSTRUMENTATION_ENABLED")
		os.Unsetenv("METRICS_DETAILED_LABELS")
		os.Unsetenv("AUDIT_LOGGING_ENABLED")
	}()

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}

	if config.Enabled {
		t.Error("expected Enabled to be false")
	}

	if !config.DetailedLabels {
		t.Error("expected DetailedLabels to be true")
	}

	if config.AuditLogging.Enabled {
		t.Error("expected AuditLogging.Enabled to be false")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{ServiceName: "test", Enabled: true}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	invalid := Config{ServiceName: ""}
	if err := invalid.Validate(); err == nil {
		t.Error("expected error for empty service name, got nil")
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	if v := getEnvOrDefault("TEST_VAR", "default"); v != "test_value" {
		t.Errorf("expected 'test_value', got %q", v)
	}

	if v := getEnvOrDefault("NONEXISTENT_VAR", "default"); v != "default" {
		t.Errorf("expected 'default', got %q", v)
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	os.Setenv("TEST_BOOL_TRUE", "true")
	os.Setenv("TEST_BOOL_FALSE", "false")
	os.Setenv("TEST_BOOL_INVALID", "not_a_bool")
	defer func() {
		os.Unsetenv("TEST_BOOL_TRUE")
		os.Unsetenv("TEST_BOOL_FALSE")
		os.Unsetenv("TEST_BOOL_INVALID")
	}()

	if v := getEnvBoolOrDefault("TEST_BOOL_TRUE", false); !v {
		t.Error("expected true")
	}

	if v := getEnvBoolOrDefault("TEST_BOOL_FALSE", true); v {
		t.Error("expected false")
	}

	if v := getEnvBoolOrDefault("TEST_BOOL_INVALID", true); !v {
		t.Error("expected default value true for invalid bool")
	}

	if v := getEnvBoolOrDefault("NONEXISTENT", true); !v {
		t.Error("expected default value true")
	}
}
