package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/notariadigital/escribano/internal/instrumentation"
	"github.com/notariadigital/escribano/internal/resources"
	"github.com/notariadigital/escribano/internal/secrets"
	"github.com/notariadigital/escribano/internal/server"
	"github.com/notariadigital/escribano/internal/tools/calendar_tools"
	"github.com/notariadigital/escribano/internal/tools/document_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		baseURL            string
		googleClientID     string
		googleClientSecret string
		rootFolderID       string
		metricsEnabled     bool
		metricsAddr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that saves dictated
documents to Google Drive and reads the office calendar.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport behind Google OAuth

Configuration:
  Google OAuth client (required for token refresh):
    --google-client-id and --google-client-secret flags
    OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars

  Drive root folder (required):
    --root-folder-id flag OR DRIVE_ROOT_FOLDER_ID env var
    The shared Drive folder under which per-user folders are created.

  Base URL (HTTP transport, required for deployed instances):
    --base-url https://your-domain.com OR MCP_BASE_URL env var
    Auto-detected for localhost (development only)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsConfig.Addr = addr
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "false" {
				metricsConfig.Enabled = false
			}

			return runServe(transport, debugMode, httpAddr, baseURL, googleClientID, googleClientSecret, rootFolderID, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var.")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID for token refresh. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret for token refresh. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&rootFolderID, "root-folder-id", "", "Drive folder ID under which per-user folders are created. Can also use DRIVE_ROOT_FOLDER_ID env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr, baseURL, googleClientID, googleClientSecret, rootFolderID string, metricsConfig MetricsConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr: stdout carries the MCP protocol on stdio transport.
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Flags take precedence; the env resolver fills in the rest.
	resolver := secrets.NewEnvResolver()
	if googleClientID == "" {
		googleClientID, _ = resolver.GetSecret(shutdownCtx, secrets.GoogleClientID)
	}
	if googleClientSecret == "" {
		googleClientSecret, _ = resolver.GetSecret(shutdownCtx, secrets.GoogleClientSecret)
	}
	if rootFolderID == "" {
		var err error
		rootFolderID, err = resolver.GetSecret(shutdownCtx, secrets.DriveRootFolderID)
		if err != nil {
			return fmt.Errorf("root folder ID is required: %w", err)
		}
	}
	if googleClientID == "" || googleClientSecret == "" {
		logger.Warn("Google OAuth client credentials not configured, token refresh will fail when tokens expire")
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during instrumentation shutdown", "error", err)
		}
	}()

	// Metrics live on a dedicated port, separate from the MCP endpoint.
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		logger.Info("Metrics server started", "addr", metricsServer.Addr())
	}

	serverConfig := server.Config{
		Logger:             logger,
		GoogleClientID:     googleClientID,
		GoogleClientSecret: googleClientSecret,
		RootFolderID:       rootFolderID,
	}
	if provider.Enabled() {
		serverConfig.Metrics = provider.Metrics()
		serverConfig.Audit = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}

	serverContext, err := server.NewServerContext(shutdownCtx, serverConfig)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if metricsServer != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := metricsServer.Shutdown(stopCtx); err != nil {
				logger.Error("Error during metrics server shutdown", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("escribano", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if err := registerAll(mcpSrv, serverContext); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, logger, httpAddr, baseURL)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// registerAll registers all MCP tools and resources
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Documents",
			register: func() error {
				return document_tools.RegisterDocumentTools(mcpSrv, sc)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, sc)
			},
		},
		{
			name: "Session Resources",
			register: func() error {
				return resources.RegisterSessionResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, logger *slog.Logger, addr, baseURL string) error {
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}
	if baseURL == "" {
		// Fall back to auto-detection for local development
		baseURL = fmt.Sprintf("http://%s", addr)
		if addr[0] == ':' {
			baseURL = fmt.Sprintf("http://localhost%s", addr)
		}
		logger.Info("No base URL configured, using auto-detected", "base_url", baseURL)
		logger.Info("For deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		logger.Info("Using configured base URL", "base_url", baseURL)
	}

	httpServer, err := server.NewOAuthHTTPServer(mcpSrv, sc, baseURL)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("Streamable HTTP server with Google OAuth starting",
		"addr", addr,
		"mcp_endpoint", "/mcp",
		"health_endpoints", "/healthz /readyz",
		"oauth_metadata", "/.well-known/oauth-protected-resource")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := httpServer.Shutdown(stopCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
