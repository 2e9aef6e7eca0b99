package common

import (
	"context"

	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/session"
)

// ResolveUserEmail determines which user a tool invocation acts for.
//
// Priority order:
//  1. OAuth user email from context (set by the HTTP bearer middleware)
//  2. Explicit "user_email" argument in the request (stdio transport)
//  3. Identity previously bound to the session
//
// When an identity is found through the context or an argument it is bound
// to the session so later invocations in the same conversation can omit it.
// Returns "" when no identity can be established.
func ResolveUserEmail(ctx context.Context, args map[string]interface{}, state *session.State) string {
	if userInfo, ok := server.GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		state.SetUserEmail(userInfo.Email)
		return userInfo.Email
	}

	if email, ok := args["user_email"].(string); ok && email != "" {
		state.SetUserEmail(email)
		return email
	}

	return state.UserEmail()
}

// SessionForRequest returns the session state a tool invocation should use.
// HTTP requests are keyed by the authenticated user's email (hashed, so
// session listings never carry raw addresses); stdio runs one conversation
// per process and shares the default session.
func SessionForRequest(ctx context.Context, sc *server.ServerContext) *session.State {
	if userInfo, ok := server.GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		return sc.Sessions().GetForUser(userInfo.Email)
	}
	return sc.Sessions().Get(session.DefaultSessionID)
}
