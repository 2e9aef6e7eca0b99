// Package secrets provides an abstraction for retrieving deployment secrets
// (OAuth client credentials, the Drive root folder ID) from different
// backends.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Well-known secret names.
const (
	GoogleClientID     = "google-client-id"
	GoogleClientSecret = "google-client-secret"
	DriveRootFolderID  = "drive-root-folder-id"
)

// Resolver retrieves secret values by name.
type Resolver interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// EnvResolver fetches secrets from environment variables. The secret name is
// converted to the corresponding environment variable name by uppercasing and
// replacing hyphens with underscores: "google-client-id" -> "GOOGLE_CLIENT_ID".
type EnvResolver struct{}

// NewEnvResolver returns a Resolver that reads from environment variables.
func NewEnvResolver() Resolver {
	return &EnvResolver{}
}

// GetSecret reads from the environment variable derived from the secret name.
func (r *EnvResolver) GetSecret(_ context.Context, name string) (string, error) {
	envName := secretNameToEnvVar(name)
	val := os.Getenv(envName)
	if val == "" {
		return "", fmt.Errorf("environment variable %q (for secret %q) is not set", envName, name)
	}
	return val, nil
}

// secretNameToEnvVar converts a secret name to an environment variable name.
// "google-client-secret" -> "GOOGLE_CLIENT_SECRET"
func secretNameToEnvVar(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// StaticResolver serves secrets from a fixed map. Used in tests and for
// flag-provided values.
type StaticResolver map[string]string

// GetSecret returns the mapped value for name.
func (r StaticResolver) GetSecret(_ context.Context, name string) (string, error) {
	val, ok := r[name]
	if !ok || val == "" {
		return "", fmt.Errorf("secret %q is not configured", name)
	}
	return val, nil
}
