// Package drive provides a client for interacting with the Google Drive API.
//
// The client covers the file management operations the document tools need:
//   - Finding and creating per-user folders
//   - Listing Google Docs documents within a folder
//   - Moving files between folders
//   - Retrieving single-file metadata
//
// The DocumentStore interface abstracts these operations so that the
// folder/version resolver and the tools can be tested against in-memory
// fakes.
//
// OAuth Authentication:
// Clients are constructed from a session-cached Google credential. The
// drive.file scope limits access to files this application created or
// that the user opened with it.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := drive.NewClient(ctx, cred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	docs, err := client.ListDocuments(ctx, folderID, &drive.ListDocumentsOptions{
//	    NameContains: "contrato-alquiler",
//	    OrderBy:      "modifiedTime desc",
//	})
package drive
