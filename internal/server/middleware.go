package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/giantswarm/mcp-oauth/providers"
	"github.com/giantswarm/mcp-oauth/storage"
	"golang.org/x/oauth2"

	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/logging"
)

// googleUserinfoEndpoint is where bearer tokens are validated.
const googleUserinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// contextKey is the type for context keys
type contextKey string

const (
	// userContextKey is the key for storing the user info in the request context
	userContextKey contextKey = "oauth_user"

	// tokenContextKey is the key for storing the Google token in the request context
	tokenContextKey contextKey = "google_token"
)

// ErrorResponse represents an OAuth error response
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// BearerValidator validates Google OAuth bearer tokens on incoming HTTP
// requests. Validated tokens are saved to the token store keyed by the
// user's email so tool handlers can build Google API clients from them.
type BearerValidator struct {
	resource string
	endpoint string
	tokens   storage.TokenStore
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
}

// NewBearerValidator creates a validator for the given resource URL.
func NewBearerValidator(resource string, tokens storage.TokenStore, logger *slog.Logger) *BearerValidator {
	return NewBearerValidatorWithMetrics(resource, tokens, logger, nil)
}

// NewBearerValidatorWithMetrics creates a validator that records
// authentication outcomes. metrics may be nil.
func NewBearerValidatorWithMetrics(resource string, tokens storage.TokenStore, logger *slog.Logger, metrics *instrumentation.Metrics) *BearerValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BearerValidator{
		resource: resource,
		endpoint: googleUserinfoEndpoint,
		tokens:   tokens,
		logger:   logger,
		metrics:  metrics,
	}
}

// ValidateGoogleToken is middleware that validates Google OAuth tokens.
// It validates the token with Google's userinfo endpoint and stores user info in context.
func (v *BearerValidator) ValidateGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			// Return 401 with WWW-Authenticate header pointing to resource metadata
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource"`,
				v.resource,
			))
			v.writeUnauthorizedError(w, "missing_token", "Missing Authorization header")
			return
		}

		// Check for Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="Invalid Authorization header format"`,
				v.resource,
			))
			v.writeUnauthorizedError(w, "invalid_token", "Invalid Authorization header format")
			return
		}

		token := &oauth2.Token{
			AccessToken: parts[1],
			TokenType:   "Bearer",
		}

		// Validate token by calling Google's userinfo endpoint
		userInfo, err := v.fetchUserInfo(r.Context(), token)
		if err != nil {
			v.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultFailure)
			errorDesc := getActionableErrorMessage(err)

			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="%s"`,
				v.resource,
				errorDesc,
			))
			v.writeUnauthorizedError(w, "invalid_token", errorDesc)
			return
		}

		v.metrics.RecordOAuthAuth(r.Context(), instrumentation.OAuthResultSuccess)

		// Store user info and token in context
		ctx := context.WithValue(r.Context(), userContextKey, userInfo)
		ctx = context.WithValue(ctx, tokenContextKey, token)

		// Save the token keyed by email so tool handlers can build
		// Google API clients for this user.
		if err := v.tokens.SaveToken(ctx, userInfo.Email, token); err != nil {
			// Log but don't fail - we can still process the request
			v.logger.Warn("Failed to save Google token",
				logging.UserHash(userInfo.Email),
				logging.Err(err))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// fetchUserInfo validates a token by calling Google's userinfo endpoint.
func (v *BearerValidator) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*providers.UserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(v.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if payload.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}

	return &providers.UserInfo{
		Email: payload.Email,
		Name:  payload.Name,
	}, nil
}

// GetUserFromContext retrieves the Google user info from the request context.
func GetUserFromContext(ctx context.Context) (*providers.UserInfo, bool) {
	userInfo, ok := ctx.Value(userContextKey).(*providers.UserInfo)
	return userInfo, ok
}

// GetGoogleTokenFromContext retrieves the Google token from the request context.
func GetGoogleTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return token, ok
}

// writeUnauthorizedError writes an OAuth error response with 401 status
func (v *BearerValidator) writeUnauthorizedError(w http.ResponseWriter, errorCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// getActionableErrorMessage converts technical errors into user-friendly, actionable messages
func getActionableErrorMessage(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "Unauthorized") {
		return "Google token is invalid or expired. Please re-authenticate through your MCP client to continue."
	}

	if strings.Contains(errStr, "403") || strings.Contains(errStr, "Forbidden") {
		return "Access denied by Google. Please ensure your token has the required scopes and re-authenticate through your MCP client."
	}

	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "timeout") || strings.Contains(errStr, "dial") {
		return "Unable to verify token with Google due to network issues. Please try again in a moment."
	}

	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return "Google API rate limit exceeded. Please wait a moment and try again."
	}

	return fmt.Sprintf("Token validation failed: %v", err)
}
