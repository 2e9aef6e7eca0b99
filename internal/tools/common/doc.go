// Package common provides shared utilities for MCP tool implementations:
// user identity resolution, the per-session credential contract, and
// instrumented handler wrappers. All tool packages go through these helpers
// so every invocation follows the same auth and observability path.
package common
