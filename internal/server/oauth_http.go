package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/notariadigital/escribano/internal/google"
)

// ProtectedResourceMetadata represents OAuth 2.0 Protected Resource Metadata (RFC 9728)
type ProtectedResourceMetadata struct {
	// Resource is the identifier for the protected resource
	Resource string `json:"resource"`

	// AuthorizationServers lists the authorization servers that can issue tokens for this resource
	AuthorizationServers []string `json:"authorization_servers"`

	// BearerMethodsSupported lists the ways Bearer tokens can be sent (RFC 6750)
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`

	// ScopesSupported lists the scopes understood by this resource
	ScopesSupported []string `json:"scopes_supported,omitempty"`
}

// OAuthHTTPServer serves the MCP streamable HTTP transport behind Google
// bearer token authentication. It implements RFC 9728 Protected Resource
// Metadata so MCP clients can discover Google as the authorization server.
type OAuthHTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	validator     *BearerValidator
	health        *HealthChecker
	httpServer    *http.Server
	baseURL       string
}

// NewOAuthHTTPServer creates a new OAuth-protected HTTP server for MCP.
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, baseURL string) (*OAuthHTTPServer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	return &OAuthHTTPServer{
		mcpServer:     mcpServer,
		serverContext: sc,
		validator:     NewBearerValidatorWithMetrics(baseURL, sc.Tokens(), sc.Logger(), sc.Metrics()),
		health:        NewHealthChecker(sc),
		baseURL:       baseURL,
	}, nil
}

// Start starts the OAuth-protected HTTP server.
func (s *OAuthHTTPServer) Start(addr string) error {
	// Validate HTTPS requirement for OAuth 2.1
	// Exception: localhost is allowed to use HTTP for development
	if err := validateHTTPSRequirement(s.baseURL); err != nil {
		return err
	}

	mux := http.NewServeMux()

	// Protected Resource Metadata endpoint (RFC 9728)
	// This tells MCP clients where to find the authorization server (Google)
	mux.HandleFunc("/.well-known/oauth-protected-resource", s.serveProtectedResourceMetadata)

	// Interactive authorization flow for clients that cannot bring their
	// own Google token. The callback stores the exchanged token in the
	// shared token store, where the credential contract picks it up.
	mux.HandleFunc("/oauth/authorize", s.handleAuthorize)
	mux.HandleFunc("/oauth/callback", s.handleCallback)

	// Health endpoints stay unauthenticated for Kubernetes probes
	s.health.RegisterHealthEndpoints(mux)

	// MCP endpoint behind bearer validation
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath("/mcp"),
	)
	mux.Handle("/mcp", s.validator.ValidateGoogleToken(streamable))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// serveProtectedResourceMetadata serves the OAuth 2.0 Protected Resource Metadata (RFC 9728).
//
// The MCP client will:
//  1. Make an unauthenticated request to the MCP server
//  2. Receive a 401 with WWW-Authenticate header pointing to this endpoint
//  3. Fetch this metadata to discover the authorization server
//  4. Obtain a Google access token with the listed scopes
//  5. Include the token in subsequent requests to the MCP server
func (s *OAuthHTTPServer) serveProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := ProtectedResourceMetadata{
		Resource: s.baseURL,
		AuthorizationServers: []string{
			"https://accounts.google.com",
		},
		BearerMethodsSupported: []string{
			"header", // Authorization: Bearer <token>
		},
		ScopesSupported: google.DefaultOAuthScopes,
	}

	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		s.serverContext.Logger().Error("Failed to encode metadata", "error", err)
	}
}

// stateCookieName carries the CSRF state between authorize and callback.
const stateCookieName = "oauth_state"

// handleAuthorize starts the interactive Google consent flow. The state
// parameter is mirrored in a short-lived cookie so the callback can verify
// the redirect actually originated here.
func (s *OAuthHTTPServer) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.serverContext.OAuthConfig(s.baseURL + "/oauth/callback")
	if cfg == nil {
		http.Error(w, "OAuth client is not configured on this server", http.StatusServiceUnavailable)
		return
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/oauth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.baseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})

	// Offline access with forced consent so Google returns a refresh token.
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback finishes the consent flow: it verifies the state, exchanges
// the code, resolves the user's email from the token and saves the token
// under that email in the shared store.
func (s *OAuthHTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		http.Error(w, fmt.Sprintf("Authorization was not completed: %s", errParam), http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid or missing state parameter", http.StatusBadRequest)
		return
	}
	// State is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/oauth", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	cfg := s.serverContext.OAuthConfig(s.baseURL + "/oauth/callback")
	if cfg == nil {
		http.Error(w, "OAuth client is not configured on this server", http.StatusServiceUnavailable)
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		s.serverContext.Logger().Error("Authorization code exchange failed", "error", err)
		http.Error(w, "Failed to exchange authorization code", http.StatusBadGateway)
		return
	}

	userInfo, err := s.validator.fetchUserInfo(r.Context(), token)
	if err != nil {
		s.serverContext.Logger().Error("Failed to resolve user for exchanged token", "error", err)
		http.Error(w, "Failed to resolve the authorized user", http.StatusBadGateway)
		return
	}

	if err := s.serverContext.Tokens().SaveToken(r.Context(), userInfo.Email, token); err != nil {
		s.serverContext.Logger().Error("Failed to save exchanged token", "error", err)
		http.Error(w, "Failed to store the authorization", http.StatusInternalServerError)
		return
	}

	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Autorización completada para %s. Ya puede volver al asistente y repetir la operación.\n", userInfo.Email)
}

// setSecurityHeaders sets security headers on HTTP responses
func setSecurityHeaders(w http.ResponseWriter) {
	// Prevent clickjacking attacks
	w.Header().Set("X-Frame-Options", "DENY")

	// Prevent MIME type sniffing
	w.Header().Set("X-Content-Type-Options", "nosniff")
}

// validateHTTPSRequirement ensures OAuth 2.1 HTTPS compliance
// Allows HTTP only for loopback addresses (localhost, 127.0.0.1, ::1)
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	// Parse URL to properly validate scheme and host
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	// Allow HTTP only for loopback addresses
	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
