// Package resources provides MCP resources for exposing session data.
// Resources are read-only data sources that MCP clients can fetch: the user
// identity bound to the conversation and the documents saved so far. Each
// session sees only its own data.
package resources
