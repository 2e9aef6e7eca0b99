package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/notariadigital/escribano/internal/google"
	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/logging"
	"github.com/notariadigital/escribano/internal/session"
)

// AuthResult is the outcome of a completed interactive authorization flow,
// as delivered by the surrounding agent framework or the OAuth middleware.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Manager implements the credential cache contract every Workspace tool
// follows: load a cached credential (refreshing it once if expired), map
// completed authorization results into credentials, cache them, and clear
// them when an API call reports the credential is no longer honored.
type Manager struct {
	clientID     string
	clientSecret string
	logger       *slog.Logger
	metrics      *instrumentation.Metrics
}

// NewManager creates a credential cache manager. The OAuth client credentials
// are stamped onto every credential so that refresh is possible later.
func NewManager(clientID, clientSecret string, logger *slog.Logger) *Manager {
	return NewManagerWithMetrics(clientID, clientSecret, logger, nil)
}

// NewManagerWithMetrics creates a credential cache manager that records token
// refresh outcomes. A nil metrics recorder is valid.
func NewManagerWithMetrics(clientID, clientSecret string, logger *slog.Logger, metrics *instrumentation.Metrics) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger,
		metrics:      metrics,
	}
}

// LoadCached returns a usable credential from the session cache, or nil if
// the session has none.
//
// A valid credential is returned as-is. An expired credential with a refresh
// token triggers exactly one synchronous refresh; on success the refreshed
// credential is persisted back to the session and returned. A rejected
// refresh, an expired credential without refresh material, or a malformed
// cache entry are all treated as absent; the stale entry is left in place so
// the caller can overwrite it from a completed authorization or clear it.
func (m *Manager) LoadCached(ctx context.Context, state *session.State) (*google.Credential, error) {
	cred := state.Credential()
	if cred == nil {
		return nil, nil
	}
	if cred.AccessToken == "" {
		m.logger.Warn("Cached credential is malformed, treating as absent")
		return nil, nil
	}
	if cred.Valid() {
		return cred, nil
	}
	if !cred.CanRefresh() {
		m.logger.Debug("Cached credential expired without refresh token")
		return nil, nil
	}

	refreshed, err := cred.Refresh(ctx)
	if err != nil {
		m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		m.logger.Warn("Refresh of cached credential was rejected, treating as absent",
			logging.Operation("auth.refresh"),
			logging.Err(err))
		return nil, nil
	}
	m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
	state.SetCredential(refreshed)
	m.logger.Debug("Refreshed cached credential",
		logging.Operation("auth.refresh"),
		slog.String("token", logging.SanitizeToken(refreshed.AccessToken)))
	return refreshed, nil
}

// FromAuthResult maps a completed authorization result into a cacheable
// credential. The token endpoint and scope set are fixed: every credential
// this server handles refreshes against Google's token endpoint with the
// deployment's scope set, regardless of what the flow reported.
func (m *Manager) FromAuthResult(result AuthResult) *google.Credential {
	return &google.Credential{
		AccessToken:   result.AccessToken,
		RefreshToken:  result.RefreshToken,
		TokenEndpoint: google.TokenEndpoint,
		ClientID:      m.clientID,
		ClientSecret:  m.clientSecret,
		Scopes:        google.DefaultOAuthScopes,
		Expiry:        result.Expiry,
	}
}

// Cache stores a credential in the session's fixed credential slot,
// overwriting whatever was there. Last write wins.
func (m *Manager) Cache(state *session.State, cred *google.Credential) {
	state.SetCredential(cred)
}

// Clear removes the session's cached credential. Clearing an absent
// credential is a no-op.
func (m *Manager) Clear(state *session.State) {
	state.ClearCredential()
}

// IsAuthError reports whether an API error means the credential is no longer
// honored (HTTP 401 or 403). Callers clear the cached credential on these and
// propagate the error, so the next invocation restarts the auth flow.
func IsAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}
	return false
}
