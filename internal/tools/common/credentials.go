package common

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/notariadigital/escribano/internal/auth"
	"github.com/notariadigital/escribano/internal/google"
	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/session"
)

// PendingStatus marks a tool result that asks the caller to complete an
// authorization flow before retrying the invocation.
const PendingStatus = "pending"

// pendingResult is the structured payload returned when no credential is
// available yet. Agents key off the status field; the message is shown to
// the end user.
type pendingResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ObtainCredential walks the credential contract for a tool invocation:
//
//  1. Return the cached session credential when one is usable (LoadCached
//     performs at most one synchronous refresh).
//  2. Map a completed authorization result into a credential, cache it in
//     the session and return it. Over HTTP the result is the validated
//     bearer token the middleware stored in the context; over stdio it is
//     the "auth_result" argument the agent framework passes through; failing
//     both, the shared token store is consulted for a token the bearer
//     middleware or callback endpoint saved for the session's user.
//  3. With neither available, return a pending result directing the user
//     through the authorization flow.
//
// Exactly one of cred and pending is non-nil on a nil error. Callers that
// receive an auth error from a later API call clear the cache with
// sc.Auth().Clear(state) and surface the error, so the next invocation
// restarts this contract from an empty slot.
func ObtainCredential(ctx context.Context, sc *server.ServerContext, state *session.State, args map[string]interface{}) (cred *google.Credential, pending *mcp.CallToolResult, err error) {
	cred, err = sc.Auth().LoadCached(ctx, state)
	if err != nil {
		return nil, nil, err
	}
	if cred != nil {
		return cred, nil, nil
	}

	if result, ok := authResultFromRequest(ctx, args); ok {
		cred = sc.Auth().FromAuthResult(result)
		sc.Auth().Cache(state, cred)
		return cred, nil, nil
	}

	if result, ok := authResultFromStore(ctx, sc, state.UserEmail()); ok {
		cred = sc.Auth().FromAuthResult(result)
		sc.Auth().Cache(state, cred)
		return cred, nil, nil
	}

	return nil, NewPendingResult("Autorización pendiente: acceda a su cuenta de Google para continuar. Una vez autorizado, vuelva a intentar la operación."), nil
}

// authResultFromRequest extracts a completed authorization result from the
// invocation, preferring the middleware-validated bearer token over an
// argument-supplied one.
func authResultFromRequest(ctx context.Context, args map[string]interface{}) (auth.AuthResult, bool) {
	if token, ok := server.GetGoogleTokenFromContext(ctx); ok && token.AccessToken != "" {
		return auth.AuthResult{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			Expiry:       token.Expiry,
		}, true
	}

	raw, ok := args["auth_result"].(map[string]interface{})
	if !ok {
		return auth.AuthResult{}, false
	}
	accessToken, _ := raw["access_token"].(string)
	if accessToken == "" {
		return auth.AuthResult{}, false
	}
	result := auth.AuthResult{AccessToken: accessToken}
	result.RefreshToken, _ = raw["refresh_token"].(string)
	return result, true
}

// authResultFromStore looks up a token the HTTP layer saved for the user.
// This is how a stdio-established session picks up an authorization that was
// completed over the callback endpoint or a validated bearer request.
func authResultFromStore(ctx context.Context, sc *server.ServerContext, userEmail string) (auth.AuthResult, bool) {
	if userEmail == "" {
		return auth.AuthResult{}, false
	}
	token, err := sc.Tokens().GetToken(ctx, userEmail)
	if err != nil || token == nil || !token.Valid() {
		return auth.AuthResult{}, false
	}
	return auth.AuthResult{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, true
}

// NewPendingResult builds the structured pending payload as a non-error tool
// result: the invocation did not fail, it is waiting on the user.
func NewPendingResult(message string) *mcp.CallToolResult {
	payload, _ := json.Marshal(pendingResult{Status: PendingStatus, Message: message})
	return mcp.NewToolResultText(string(payload))
}

// IsPendingResult reports whether a tool result is the structured pending
// payload, so instrumentation can record the invocation as pending rather
// than succeeded or failed.
func IsPendingResult(result *mcp.CallToolResult) bool {
	if result == nil || result.IsError || len(result.Content) == 0 {
		return false
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, `"status"`) {
		return false
	}
	var payload pendingResult
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		return false
	}
	return payload.Status == PendingStatus
}
