package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/tools/common"
)

// RegisterSessionResources registers the session-scoped resources: the bound
// user identity and the documents saved during this conversation. Both are
// served from session state without Google API calls.
func RegisterSessionResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"session://profile",
		"Session Profile",
		mcp.WithResourceDescription("The user identity bound to this conversation session"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSessionProfile(ctx, request, sc)
	})

	savedResource := mcp.NewResource(
		"session://saved-documents",
		"Saved Documents",
		mcp.WithResourceDescription("Documents saved during this conversation, in save order"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(savedResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSavedDocuments(ctx, request, sc)
	})

	return nil
}

func handleSessionProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	state := common.SessionForRequest(ctx, sc)

	profile := map[string]interface{}{
		"user_email":      state.UserEmail(),
		"authorized":      state.Credential() != nil,
		"documents_saved": len(state.SavedDocuments()),
		"last_access":     state.LastAccess(),
	}

	return jsonResource(request.Params.URI, profile)
}

func handleSavedDocuments(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	state := common.SessionForRequest(ctx, sc)
	return jsonResource(request.Params.URI, state.SavedDocuments())
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
