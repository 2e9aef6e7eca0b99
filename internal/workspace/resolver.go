// Package workspace resolves where a document belongs in Drive and what it
// should be called: one folder per user under a configured root, and
// versioned names within that folder.
package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notariadigital/escribano/internal/drive"
	"github.com/notariadigital/escribano/internal/logging"
	"github.com/notariadigital/escribano/internal/naming"
)

// Resolver provisions per-user folders and computes versioned document names
// on top of a DocumentStore.
type Resolver struct {
	store  drive.DocumentStore
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store drive.DocumentStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// EnsureUserFolder returns the ID of the folder named ownerEmail directly
// under rootFolderID, creating it if it does not exist. The operation is
// idempotent for sequential callers.
//
// The check and the create are separate Drive calls, so two concurrent
// callers for the same user can each create a folder; Drive allows duplicate
// names. Usage is effectively single-writer per user (one conversation at a
// time), so this is accepted rather than locked around.
func (r *Resolver) EnsureUserFolder(ctx context.Context, ownerEmail, rootFolderID string) (string, error) {
	if ownerEmail == "" {
		return "", fmt.Errorf("ownerEmail is required")
	}
	if rootFolderID == "" {
		return "", fmt.Errorf("rootFolderID is required")
	}

	folder, err := r.store.FindChildFolder(ctx, rootFolderID, ownerEmail)
	if err != nil {
		return "", fmt.Errorf("failed to look up folder for %s: %w", ownerEmail, err)
	}
	if folder != nil {
		return folder.ID, nil
	}

	created, err := r.store.CreateFolder(ctx, ownerEmail, rootFolderID)
	if err != nil {
		return "", fmt.Errorf("failed to create folder for %s: %w", ownerEmail, err)
	}

	r.logger.Info("Created user folder",
		logging.Operation("workspace.ensureUserFolder"),
		logging.UserHash(ownerEmail),
		logging.Folder(created.ID))
	return created.ID, nil
}

// NextVersionName computes the name the next save of baseName should use
// within folderID. The bare base name counts as version 1 and names of the
// form <base>-v<N> as version N; anything else in the listing is ignored.
// With no versions present the bare base name is returned, otherwise
// <base>-v<max+1>.
func (r *Resolver) NextVersionName(ctx context.Context, folderID, baseName string) (string, error) {
	if folderID == "" {
		return "", fmt.Errorf("folderID is required")
	}
	if baseName == "" {
		return "", fmt.Errorf("baseName is required")
	}

	docs, err := r.store.ListDocuments(ctx, folderID, &drive.ListDocumentsOptions{
		NameContains: baseName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list versions of %q: %w", baseName, err)
	}

	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = doc.Name
	}
	return naming.NextName(baseName, names), nil
}
