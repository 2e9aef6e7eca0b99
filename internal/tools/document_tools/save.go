package document_tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/notariadigital/escribano/internal/docs"
	"github.com/notariadigital/escribano/internal/drive"
	"github.com/notariadigital/escribano/internal/logging"
	"github.com/notariadigital/escribano/internal/naming"
	"github.com/notariadigital/escribano/internal/session"
	"github.com/notariadigital/escribano/internal/workspace"
)

// saveDeps are the Google Workspace capabilities the save pipeline consumes.
// Production wires Drive and Docs clients; tests wire in-memory fakes.
type saveDeps struct {
	store   drive.DocumentStore
	creator docs.Creator
	logger  *slog.Logger
}

// saveOutcome describes a completed save.
type saveOutcome struct {
	Document    session.SavedDocument
	UserMessage string
}

// saveDocument runs the full save pipeline for one document: resolve the
// user's folder under the configured root, normalize the requested title,
// compute the next version name from what is already in the folder, create
// the document and move it into place.
//
// A failure listing existing versions falls back to the bare base name
// rather than failing the save; a duplicate name is recoverable, a lost
// document is not. The post-create move and link lookup are best-effort for
// the link only: a failed move is a real error because the document would
// otherwise be stranded in the Drive root.
func saveDocument(ctx context.Context, deps saveDeps, userEmail, rootFolderID, title, content string) (*saveOutcome, error) {
	resolver := workspace.NewResolver(deps.store, deps.logger)

	folderID, err := resolver.EnsureUserFolder(ctx, userEmail, rootFolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder for %s: %w", userEmail, err)
	}

	baseName := naming.NormalizeTitle(title)
	if baseName == "" {
		return nil, fmt.Errorf("title %q normalizes to an empty name", title)
	}

	name, err := resolver.NextVersionName(ctx, folderID, baseName)
	if err != nil {
		deps.logger.Warn("Version listing failed, saving under base name",
			logging.Operation("documents.save"),
			logging.Document(baseName),
			logging.Err(err))
		name = baseName
	}

	doc, err := deps.creator.CreateDocument(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to create document %q: %w", name, err)
	}

	moved, err := deps.store.MoveFile(ctx, doc.ID, folderID, "root")
	if err != nil {
		return nil, fmt.Errorf("failed to move document %s into folder %s: %w", doc.ID, folderID, err)
	}

	link := moved.WebViewLink
	if info, err := deps.store.GetFile(ctx, doc.ID); err != nil {
		deps.logger.Warn("Link lookup failed after save",
			logging.Operation("documents.save"),
			logging.Document(doc.ID),
			logging.Err(err))
	} else if info.WebViewLink != "" {
		link = info.WebViewLink
	}

	saved := session.SavedDocument{
		Name:        name,
		DocumentID:  doc.ID,
		FolderID:    folderID,
		WebViewLink: link,
		SavedAt:     time.Now(),
	}

	deps.logger.Info("Saved document",
		logging.Operation("documents.save"),
		logging.UserHash(userEmail),
		logging.Document(saved.DocumentID),
		logging.Folder(folderID))

	message := fmt.Sprintf("Documento guardado exitosamente como '%s'.", name)
	if saved.WebViewLink != "" {
		message += fmt.Sprintf(" Enlace: %s", saved.WebViewLink)
	}

	return &saveOutcome{Document: saved, UserMessage: message}, nil
}
