package docs

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/notariadigital/escribano/internal/google"
)

// Document describes a created Google Doc.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Creator is the capability the save tool consumes for producing documents.
type Creator interface {
	CreateDocument(ctx context.Context, title, content string) (*Document, error)
}

// Client wraps the Google Docs API service. It implements Creator.
type Client struct {
	service *docs.Service
}

var _ Creator = (*Client)(nil)

// NewClient creates a Docs client authenticated with the given credential.
func NewClient(ctx context.Context, cred *google.Credential) (*Client, error) {
	if !cred.Valid() {
		return nil, fmt.Errorf("credential is not valid for Docs access")
	}

	service, err := docs.NewService(ctx, option.WithHTTPClient(cred.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}
	return &Client{service: service}, nil
}

// NewClientWithService wraps an existing Docs service.
func NewClientWithService(service *docs.Service) *Client {
	return &Client{service: service}
}

// CreateDocument creates a Google Doc with the given title and, when content
// is non-empty, inserts it as the document body. New documents land in the
// user's Drive root; moving them into a folder is a separate Drive operation.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*Document, error) {
	if title == "" {
		return nil, fmt.Errorf("document title is required")
	}

	created, err := c.service.Documents.Create(&docs.Document{Title: title}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document %q: %w", title, err)
	}

	if content != "" {
		// Index 1 is the first insertable position in a new document body.
		req := &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{
				{
					InsertText: &docs.InsertTextRequest{
						Text: content,
						Location: &docs.Location{
							Index: 1,
						},
					},
				},
			},
		}
		if _, err := c.service.Documents.BatchUpdate(created.DocumentId, req).
			Context(ctx).
			Do(); err != nil {
			return nil, fmt.Errorf("failed to insert content into document %s: %w", created.DocumentId, err)
		}
	}

	return &Document{
		ID:    created.DocumentId,
		Title: created.Title,
	}, nil
}
