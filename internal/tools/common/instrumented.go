package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/server"
)

// InstrumentedToolHandler wraps a tool handler with metrics and audit logging.
// An invocation that returns the structured pending payload is recorded with
// pending status, not as a success or failure.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(
	toolName string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return instrumented(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService is like InstrumentedToolHandler but also
// records the Google service and operation type, so API-level metrics
// (google_api_operations_total, google_api_operation_duration_seconds) are
// emitted alongside the tool invocation metrics.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithService("my_tool", "drive", "create", sc, handler))
func InstrumentedToolHandlerWithService(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return instrumented(toolName, serviceName, operation, sc, handler)
}

func instrumented(
	toolName string,
	serviceName string,
	operation string,
	sc *server.ServerContext,
	handler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error),
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		audit := sc.Audit()

		if metrics == nil && audit == nil {
			return handler(ctx, request)
		}

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName)
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		state := SessionForRequest(ctx, sc)
		if email := ResolveUserEmail(ctx, request.GetArguments(), state); email != "" {
			invocation.WithUser(email)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
		case IsPendingResult(result):
			status = instrumentation.StatusPending
			invocation.CompletePending()
		default:
			invocation.CompleteSuccess()
		}

		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		if serviceName != "" {
			metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
		}

		if audit != nil {
			audit.LogToolInvocation(invocation)
		}

		return result, err
	}
}
