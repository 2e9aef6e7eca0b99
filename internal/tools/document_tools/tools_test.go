package document_tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/session"
	"github.com/notariadigital/escribano/internal/tools/common"
)

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), server.Config{RootFolderID: "root-folder"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestHandleSaveDocument_MissingTitle(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleSaveDocument(context.Background(), callRequest(map[string]interface{}{
		"content": "texto",
	}), sc)

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "title is required")
}

func TestHandleSaveDocument_MissingContent(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleSaveDocument(context.Background(), callRequest(map[string]interface{}{
		"title": "Escritura",
	}), sc)

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "content is required")
}

func TestHandleSaveDocument_NoIdentity(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleSaveDocument(context.Background(), callRequest(map[string]interface{}{
		"title":   "Escritura",
		"content": "texto",
	}), sc)

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "user_email is required")
}

func TestHandleSaveDocument_NoCredentialReturnsPending(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleSaveDocument(context.Background(), callRequest(map[string]interface{}{
		"title":      "Escritura",
		"content":    "texto",
		"user_email": "ana@example.com",
	}), sc)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.True(t, common.IsPendingResult(result))

	var payload struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	assert.Equal(t, "pending", payload.Status)
	assert.NotEmpty(t, payload.Message)
}

func TestHandleListUserDocuments_NoCredentialReturnsPending(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleListUserDocuments(context.Background(), callRequest(map[string]interface{}{
		"user_email": "ana@example.com",
	}), sc)

	require.NoError(t, err)
	assert.True(t, common.IsPendingResult(result))
}

func TestHandleListSavedDocuments_EmptyHistory(t *testing.T) {
	sc := newTestContext(t)

	result, err := handleListSavedDocuments(context.Background(), callRequest(nil), sc)

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No se guardaron documentos")
}

func TestHandleListSavedDocuments_ReturnsHistory(t *testing.T) {
	sc := newTestContext(t)

	state := sc.Sessions().Get(session.DefaultSessionID)
	state.RecordSavedDocument(session.SavedDocument{
		Name:       "escritura-compraventa",
		DocumentID: "doc-1",
		FolderID:   "folder-1",
		SavedAt:    time.Now(),
	})

	result, err := handleListSavedDocuments(context.Background(), callRequest(nil), sc)

	require.NoError(t, err)
	assert.False(t, result.IsError)

	var saved []session.SavedDocument
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, "escritura-compraventa", saved[0].Name)
}
