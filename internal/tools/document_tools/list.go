package document_tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notariadigital/escribano/internal/drive"
	"github.com/notariadigital/escribano/internal/workspace"
)

// listUserDocuments resolves the user's folder and lists its Google Docs,
// most recently modified first.
func listUserDocuments(ctx context.Context, store drive.DocumentStore, logger *slog.Logger, userEmail, rootFolderID, nameContains string, maxResults int) ([]*drive.FileInfo, error) {
	resolver := workspace.NewResolver(store, logger)

	folderID, err := resolver.EnsureUserFolder(ctx, userEmail, rootFolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder for %s: %w", userEmail, err)
	}

	files, err := store.ListDocuments(ctx, folderID, &drive.ListDocumentsOptions{
		NameContains: nameContains,
		OrderBy:      "modifiedTime desc",
		MaxResults:   maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in folder %s: %w", folderID, err)
	}
	return files, nil
}
