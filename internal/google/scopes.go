package google

// TokenEndpoint is Google's OAuth2 token endpoint. Every credential handled
// by this application refreshes against this URL.
const TokenEndpoint = "https://oauth2.googleapis.com/token"

// DefaultOAuthScopes are the Google OAuth scopes the document tools require.
// The scope set is fixed per deployment; cached credentials always carry
// exactly these scopes.
//
// The scopes provide access to:
//   - Google Drive: files created or opened by this app only
//   - Google Docs: full access (document creation and content updates)
//   - Google Calendar: read-only
//   - OpenID Connect: user identity for session binding
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Drive scope (app-created files only)
	"https://www.googleapis.com/auth/drive.file",

	// Google Docs scope
	"https://www.googleapis.com/auth/documents",

	// Google Calendar scope
	"https://www.googleapis.com/auth/calendar.readonly",
}
