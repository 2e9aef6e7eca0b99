package drive

import "time"

// FileInfo represents metadata about a file or folder in Google Drive
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`

	// CreatedTime is when the file was created
	CreatedTime time.Time `json:"createdTime"`

	// ModifiedTime is when the file was last modified
	ModifiedTime time.Time `json:"modifiedTime"`

	// WebViewLink is a link for opening the file in a relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	// Parents are the IDs of the parent folders
	Parents []string `json:"parents,omitempty"`

	// Trashed indicates whether the file is in the trash
	Trashed bool `json:"trashed"`
}

// ListDocumentsOptions narrows a document listing within a folder.
type ListDocumentsOptions struct {
	// NameContains filters to documents whose name contains the given substring
	NameContains string

	// OrderBy specifies the sort order of the result set,
	// e.g. "modifiedTime desc"
	OrderBy string

	// MaxResults limits the number of documents returned (max: 1000)
	MaxResults int
}
