package drive

import "context"

// DocumentStore is the storage capability the folder/version resolver and the
// document tools consume. The production implementation is Client; tests use
// in-memory fakes.
type DocumentStore interface {
	// FindChildFolder returns the non-trashed folder with the given name
	// directly under parentID, or nil if none exists.
	FindChildFolder(ctx context.Context, parentID, name string) (*FileInfo, error)

	// CreateFolder creates a folder with the given name under parentID.
	CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error)

	// ListDocuments lists non-trashed Google Docs files in folderID.
	ListDocuments(ctx context.Context, folderID string, opts *ListDocumentsOptions) ([]*FileInfo, error)

	// MoveFile adds the file to addParentID, removing it from removeParentID
	// when non-empty.
	MoveFile(ctx context.Context, fileID, addParentID, removeParentID string) (*FileInfo, error)

	// GetFile retrieves metadata for a single file.
	GetFile(ctx context.Context, fileID string) (*FileInfo, error)
}
