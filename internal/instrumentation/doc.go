// Package instrumentation provides OpenTelemetry metrics and audit logging
// for the escribano MCP server.
//
// Metrics are recorded through the OpenTelemetry SDK and exported in
// Prometheus format on the metrics endpoint.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Domain Metrics:
//   - documents_saved_total: Counter of documents saved to Drive
//   - active_sessions: Gauge of active user sessions
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_DETAILED_LABELS: Include higher-cardinality labels such as user domain (default: false)
//   - AUDIT_LOGGING_ENABLED: Enable/disable the audit log stream (default: true)
//   - AUDIT_LOGGING_INCLUDE_PII: Log full user emails instead of domains (default: false)
//   - OTEL_SERVICE_NAME: Service name (default: escribano)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "escribano",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a Google API operation
//	recorder.RecordGoogleAPIOperation(ctx, "drive", "list", "success", time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "save_document", "success", time.Since(start))
package instrumentation
