package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	"golang.org/x/oauth2"

	"github.com/notariadigital/escribano/internal/auth"
	"github.com/notariadigital/escribano/internal/google"
	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/session"
)

// Config holds the dependencies and settings for a ServerContext.
type Config struct {
	// Logger for server-level logging. Defaults to slog.Default.
	Logger *slog.Logger

	// GoogleClientID and GoogleClientSecret identify the OAuth application
	// used to refresh user credentials.
	GoogleClientID     string
	GoogleClientSecret string

	// RootFolderID is the Drive folder under which per-user folders live.
	RootFolderID string

	// Metrics records observability metrics. May be nil.
	Metrics *instrumentation.Metrics

	// Audit logs tool invocations. May be nil.
	Audit *instrumentation.AuditLogger
}

// ServerContext holds the shared state for the MCP server: the session
// registry, the credential manager and the token store that backs the
// HTTP OAuth middleware.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	logger   *slog.Logger
	sessions *session.Manager
	auth     *auth.Manager
	tokens   storage.TokenStore

	googleClientID     string
	googleClientSecret string

	rootFolderID string
	metrics      *instrumentation.Metrics
	audit        *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, config Config) (*ServerContext, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sessions := session.NewManagerWithLogger(24*time.Hour, logger)
	if config.Metrics != nil {
		metrics := config.Metrics
		sessions.SetLifecycleHooks(
			func() { metrics.IncrementActiveSessions(context.Background()) },
			func() { metrics.DecrementActiveSessions(context.Background()) },
		)
	}

	return &ServerContext{
		ctx:                shutdownCtx,
		cancel:             cancel,
		logger:             logger,
		sessions:           sessions,
		auth:               auth.NewManagerWithMetrics(config.GoogleClientID, config.GoogleClientSecret, logger, config.Metrics),
		tokens:             memory.New(),
		googleClientID:     config.GoogleClientID,
		googleClientSecret: config.GoogleClientSecret,
		rootFolderID:       config.RootFolderID,
		metrics:            config.Metrics,
		audit:              config.Audit,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Sessions returns the session manager.
func (sc *ServerContext) Sessions() *session.Manager {
	return sc.sessions
}

// Auth returns the credential manager.
func (sc *ServerContext) Auth() *auth.Manager {
	return sc.auth
}

// Tokens returns the store holding validated Google tokens keyed by user email.
func (sc *ServerContext) Tokens() storage.TokenStore {
	return sc.tokens
}

// OAuthConfig builds the interactive-flow OAuth configuration for the given
// redirect URL, or nil when no OAuth client is configured.
func (sc *ServerContext) OAuthConfig(redirectURL string) *oauth2.Config {
	if sc.googleClientID == "" || sc.googleClientSecret == "" {
		return nil
	}
	return google.NewOAuthConfig(sc.googleClientID, sc.googleClientSecret, redirectURL)
}

// RootFolderID returns the Drive folder under which per-user folders live.
func (sc *ServerContext) RootFolderID() string {
	return sc.rootFolderID
}

// Metrics returns the metrics recorder. May be nil; a nil recorder is safe to call.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Audit returns the audit logger, or nil when audit logging is disabled.
func (sc *ServerContext) Audit() *instrumentation.AuditLogger {
	return sc.audit
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and stops background session cleanup.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.sessions.Stop()
	sc.cancel()
	return nil
}
