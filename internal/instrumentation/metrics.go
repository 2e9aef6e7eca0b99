package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrDomain    = "user_domain"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Google API metrics
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	// Domain metrics
	documentsSavedTotal metric.Int64Counter

	// Session metrics
	activeSessions metric.Int64UpDownCounter

	// Config for label cardinality control
	detailedLabels bool
}

// NewMetrics creates and registers all metric instruments with the given meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("Duration of MCP tool invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Duration of Google API operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authorization attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.documentsSavedTotal, err = meter.Int64Counter(
		"documents_saved_total",
		metric.WithDescription("Total number of documents saved to Drive"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of currently active MCP sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordToolInvocation records a tool invocation with its outcome and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records a Google API call with its outcome and duration.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthAuth records an OAuth authorization attempt.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordOAuthTokenRefresh records an OAuth token refresh attempt.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordDocumentSaved records a successfully saved document. When detailed
// labels are enabled the owning user's domain is attached; individual user
// identifiers are never used as label values.
func (m *Metrics) RecordDocumentSaved(ctx context.Context, userEmail string) {
	if m == nil {
		return
	}
	if m.detailedLabels {
		m.documentsSavedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrDomain, ExtractUserDomain(userEmail)),
		))
		return
	}
	m.documentsSavedTotal.Add(ctx, 1)
}

// IncrementActiveSessions increments the active session gauge.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active session gauge.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
