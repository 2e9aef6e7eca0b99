package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, detailedLabels bool) (*Provider, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        true,
		DetailedLabels: detailedLabels,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider, ctx
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	provider, ctx := newTestProvider(t, false)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordToolInvocation(ctx, "save_document", StatusSuccess, 100*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "save_document", StatusPending, 5*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "calendar_list_events", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	provider, ctx := newTestProvider(t, false)

	metrics := provider.Metrics()

	// Should not panic
	metrics.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationCreate, StatusError, 500*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordOAuthAuth(t *testing.T) {
	provider, ctx := newTestProvider(t, false)

	metrics := provider.Metrics()

	// Should not panic
	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthAuth(ctx, OAuthResultFailure)
}

func TestMetrics_RecordOAuthTokenRefresh(t *testing.T) {
	provider, ctx := newTestProvider(t, false)

	metrics := provider.Metrics()

	// Should not panic
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultFailure)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultExpired)
}

func TestMetrics_RecordDocumentSaved(t *testing.T) {
	provider, ctx := newTestProvider(t, false)

	metrics := provider.Metrics()

	// Should not panic - user identity is dropped without detailed labels
	metrics.RecordDocumentSaved(ctx, "ana@example.com")
}

func TestMetrics_RecordDocumentSaved_DetailedLabels(t *testing.T) {
	provider, ctx := newTestProvider(t, true)

	metrics := provider.Metrics()

	// Should not panic - only the domain is attached as a label
	metrics.RecordDocumentSaved(ctx, "ana@example.com")
	metrics.RecordDocumentSaved(ctx, "not-an-email")
}

func TestMetrics_ActiveSessions(t *testing.T) {
	provider, ctx := newTestProvider(t, false)

	metrics := provider.Metrics()

	// Should not panic
	metrics.IncrementActiveSessions(ctx)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()

	// All these should not panic on the nil recorder
	metrics.RecordToolInvocation(ctx, "save_document", StatusSuccess, 100*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordDocumentSaved(ctx, "ana@example.com")
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}
