// Package document_tools implements the MCP tools for the document workflow:
// saving dictated text as versioned Google Docs in per-user Drive folders,
// listing a user's documents, and recalling what was saved during the
// conversation.
package document_tools
