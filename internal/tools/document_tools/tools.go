package document_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/notariadigital/escribano/internal/auth"
	"github.com/notariadigital/escribano/internal/docs"
	"github.com/notariadigital/escribano/internal/drive"
	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/tools/common"
)

// RegisterDocumentTools registers the document workflow tools with the MCP
// server.
func RegisterDocumentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	saveTool := mcp.NewTool("save_document",
		mcp.WithDescription("Save text as a Google Doc in the user's folder. The title is normalized and versioned automatically: saving 'Escritura Compraventa' twice produces 'escritura-compraventa' and 'escritura-compraventa-v2'."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Human-readable document title, e.g. 'Escritura Compraventa López'"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Plain text body of the document"),
		),
		mcp.WithString("user_email",
			mcp.Description("Email of the user the document belongs to. Optional when the session already knows the user."),
		),
	)

	s.AddTool(saveTool, common.InstrumentedToolHandlerWithService(
		"save_document", instrumentation.ServiceDocs, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveDocument(ctx, request, sc)
		}))

	listTool := mcp.NewTool("list_user_documents",
		mcp.WithDescription("List the Google Docs stored in the user's folder, newest first."),
		mcp.WithString("name_contains",
			mcp.Description("Only list documents whose name contains this substring"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of documents to return (default 20)"),
		),
		mcp.WithString("user_email",
			mcp.Description("Email of the user whose folder to list. Optional when the session already knows the user."),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandlerWithService(
		"list_user_documents", instrumentation.ServiceDrive, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListUserDocuments(ctx, request, sc)
		}))

	historyTool := mcp.NewTool("list_saved_documents",
		mcp.WithDescription("List the documents saved during this conversation, in save order. Uses only session state, no Google API calls."),
	)

	s.AddTool(historyTool, common.InstrumentedToolHandler("list_saved_documents", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSavedDocuments(ctx, request, sc)
		}))

	return nil
}

func handleSaveDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	state := common.SessionForRequest(ctx, sc)
	state.Touch()

	userEmail := common.ResolveUserEmail(ctx, args, state)
	if userEmail == "" {
		return mcp.NewToolResultError("user_email is required: no user identity is bound to this session"), nil
	}

	cred, pending, err := common.ObtainCredential(ctx, sc, state, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load credentials: %v", err)), nil
	}
	if pending != nil {
		return pending, nil
	}

	driveClient, err := drive.NewClient(ctx, cred)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Drive client: %v", err)), nil
	}
	docsClient, err := docs.NewClient(ctx, cred)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	deps := saveDeps{store: driveClient, creator: docsClient, logger: sc.Logger()}
	outcome, err := saveDocument(ctx, deps, userEmail, sc.RootFolderID(), title, content)
	if err != nil {
		if auth.IsAuthError(err) {
			sc.Auth().Clear(state)
			return mcp.NewToolResultError("La autorización de Google ya no es válida. Vuelva a autorizar su cuenta e intente de nuevo."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save document: %v", err)), nil
	}

	state.RecordSavedDocument(outcome.Document)
	sc.Metrics().RecordDocumentSaved(ctx, userEmail)

	return mcp.NewToolResultText(outcome.UserMessage), nil
}

func handleListUserDocuments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	state := common.SessionForRequest(ctx, sc)
	state.Touch()

	userEmail := common.ResolveUserEmail(ctx, args, state)
	if userEmail == "" {
		return mcp.NewToolResultError("user_email is required: no user identity is bound to this session"), nil
	}

	cred, pending, err := common.ObtainCredential(ctx, sc, state, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load credentials: %v", err)), nil
	}
	if pending != nil {
		return pending, nil
	}

	driveClient, err := drive.NewClient(ctx, cred)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Drive client: %v", err)), nil
	}

	maxResults := 20
	if v, ok := args["max_results"].(float64); ok && v > 0 {
		maxResults = int(v)
	}
	nameContains, _ := args["name_contains"].(string)

	files, err := listUserDocuments(ctx, driveClient, sc.Logger(), userEmail, sc.RootFolderID(), nameContains, maxResults)
	if err != nil {
		if auth.IsAuthError(err) {
			sc.Auth().Clear(state)
			return mcp.NewToolResultError("La autorización de Google ya no es válida. Vuelva a autorizar su cuenta e intente de nuevo."), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list documents: %v", err)), nil
	}

	listing := struct {
		Count     int               `json:"count"`
		Documents []*drive.FileInfo `json:"documents"`
	}{
		Count:     len(files),
		Documents: files,
	}
	payload, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize document list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func handleListSavedDocuments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	state := common.SessionForRequest(ctx, sc)
	state.Touch()

	saved := state.SavedDocuments()
	if len(saved) == 0 {
		return mcp.NewToolResultText("No se guardaron documentos en esta conversación."), nil
	}

	payload, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize saved documents: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
