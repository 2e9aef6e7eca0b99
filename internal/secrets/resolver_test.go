package secrets

import (
	"context"
	"testing"
)

func TestSecretNameToEnvVar(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"google-client-id", "GOOGLE_CLIENT_ID"},
		{"google-client-secret", "GOOGLE_CLIENT_SECRET"},
		{"drive-root-folder-id", "DRIVE_ROOT_FOLDER_ID"},
		{"simple", "SIMPLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := secretNameToEnvVar(tt.name); got != tt.expected {
				t.Errorf("secretNameToEnvVar(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestEnvResolver(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-from-env")

	r := NewEnvResolver()
	val, err := r.GetSecret(context.Background(), GoogleClientID)
	if err != nil {
		t.Fatalf("GetSecret() error = %v", err)
	}
	if val != "client-from-env" {
		t.Errorf("GetSecret() = %q, want %q", val, "client-from-env")
	}

	if _, err := r.GetSecret(context.Background(), "missing-secret"); err == nil {
		t.Error("GetSecret() should fail for unset variables")
	}
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{GoogleClientSecret: "shh"}

	val, err := r.GetSecret(context.Background(), GoogleClientSecret)
	if err != nil {
		t.Fatalf("GetSecret() error = %v", err)
	}
	if val != "shh" {
		t.Errorf("GetSecret() = %q, want %q", val, "shh")
	}

	if _, err := r.GetSecret(context.Background(), DriveRootFolderID); err == nil {
		t.Error("GetSecret() should fail for missing entries")
	}
}
