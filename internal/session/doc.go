// Package session provides per-conversation state for the MCP server.
//
// Each conversation session owns a State: the cached Google credential, the
// user identity bound to the session, and the history of documents saved
// during the conversation. The Manager maps transport-level identity (the
// Authorization header for HTTP transports, a fixed ID for stdio) to session
// state and evicts idle sessions in the background.
package session
