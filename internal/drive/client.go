package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/notariadigital/escribano/internal/google"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// DocumentMimeType is the MIME type for Google Docs documents
	DocumentMimeType = "application/vnd.google-apps.document"
)

// listFields is the metadata selector used for document listings.
const listFields = "files(id, name, mimeType, createdTime, modifiedTime, webViewLink, parents, trashed)"

// fileFields is the metadata selector used for single-file lookups.
const fileFields = "id, name, mimeType, createdTime, modifiedTime, webViewLink, parents, trashed"

// Client wraps the Google Drive API service with the narrow surface the
// document tools need. It implements DocumentStore.
type Client struct {
	service *drive.Service
}

var _ DocumentStore = (*Client)(nil)

// NewClient creates a Drive client authenticated with the given credential.
func NewClient(ctx context.Context, cred *google.Credential) (*Client, error) {
	if !cred.Valid() {
		return nil, fmt.Errorf("credential is not valid for Drive access")
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(cred.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service}, nil
}

// NewClientWithService wraps an existing Drive service. Used by tests and by
// callers that construct the service themselves.
func NewClientWithService(service *drive.Service) *Client {
	return &Client{service: service}
}

// FindChildFolder returns the non-trashed folder named name directly under
// parentID, or nil if no such folder exists. If Drive reports more than one
// match the first is returned.
func (c *Client) FindChildFolder(ctx context.Context, parentID, name string) (*FileInfo, error) {
	if parentID == "" {
		return nil, fmt.Errorf("parentID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	list, err := c.service.Files.List().
		Context(ctx).
		Q(childFolderQuery(parentID, name)).
		Fields(listFields).
		PageSize(2).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search folder %q under %s: %w", name, parentID, err)
	}

	if len(list.Files) == 0 {
		return nil, nil
	}
	return convertToFileInfo(list.Files[0]), nil
}

// CreateFolder creates a folder with the given name under parentID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		file.Parents = []string{parentID}
	}

	created, err := c.service.Files.Create(file).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	return convertToFileInfo(created), nil
}

// ListDocuments lists non-trashed Google Docs files in folderID, optionally
// filtered by name substring and ordered.
func (c *Client) ListDocuments(ctx context.Context, folderID string, opts *ListDocumentsOptions) ([]*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}

	nameContains := ""
	if opts != nil {
		nameContains = opts.NameContains
	}

	call := c.service.Files.List().
		Context(ctx).
		Q(documentsQuery(folderID, nameContains)).
		Fields(listFields)

	if opts != nil {
		if opts.OrderBy != "" {
			call = call.OrderBy(opts.OrderBy)
		}
		if opts.MaxResults > 0 {
			call = call.PageSize(int64(opts.MaxResults))
		}
	}

	list, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in folder %s: %w", folderID, err)
	}

	files := make([]*FileInfo, len(list.Files))
	for i, f := range list.Files {
		files[i] = convertToFileInfo(f)
	}
	return files, nil
}

// MoveFile adds the file to addParentID, removing it from removeParentID when
// non-empty.
func (c *Client) MoveFile(ctx context.Context, fileID, addParentID, removeParentID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if addParentID == "" {
		return nil, fmt.Errorf("addParentID is required")
	}

	call := c.service.Files.Update(fileID, &drive.File{}).
		Context(ctx).
		AddParents(addParentID).
		Fields(fileFields)
	if removeParentID != "" {
		call = call.RemoveParents(removeParentID)
	}

	moved, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to move file %s: %w", fileID, err)
	}

	return convertToFileInfo(moved), nil
}

// GetFile retrieves metadata for a specific file.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	file, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields(fileFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// escapeQueryValue escapes a string literal for use in a Drive query.
// Backslashes and single quotes are the only characters Drive's query
// language treats specially inside a quoted string.
func escapeQueryValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// childFolderQuery builds the query for a named, non-trashed folder directly
// under a parent.
func childFolderQuery(parentID, name string) string {
	return fmt.Sprintf("name='%s' and '%s' in parents and mimeType='%s' and trashed=false",
		escapeQueryValue(name), escapeQueryValue(parentID), FolderMimeType)
}

// documentsQuery builds the query for non-trashed Google Docs files in a
// folder, optionally filtered by name substring.
func documentsQuery(folderID, nameContains string) string {
	q := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false",
		escapeQueryValue(folderID), DocumentMimeType)
	if nameContains != "" {
		q += fmt.Sprintf(" and name contains '%s'", escapeQueryValue(nameContains))
	}
	return q
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		Trashed:     f.Trashed,
	}

	// Parse timestamps
	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			fileInfo.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			fileInfo.ModifiedTime = t
		}
	}

	return fileInfo
}
