// Package server provides the MCP server context, the OAuth-protected HTTP
// transport, and the operational endpoints (health, metrics) for escribano.
//
// # Key Components
//
// ServerContext bundles the shared state every tool handler needs: the
// per-conversation session registry, the credential manager that refreshes
// Google tokens, and the token store fed by the HTTP bearer middleware.
//
// OAuthHTTPServer exposes the MCP streamable HTTP endpoint behind Google
// bearer token validation, and serves Protected Resource Metadata (RFC 9728)
// so MCP clients can discover Google as the authorization server. Tokens are
// validated against Google's userinfo endpoint on every new connection.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated from
// application traffic. HealthChecker provides /healthz and /readyz for
// Kubernetes probes.
//
// # Security Features
//
//   - HTTPS required for production (localhost exempt for development)
//   - Security headers on metadata responses
//   - User emails are hashed in operational logs
package server
