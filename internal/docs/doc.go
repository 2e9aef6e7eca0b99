// Package docs provides functionality for interacting with the Google Docs API.
//
// The package handles document creation for the save tool: a new Google Doc
// is created with a title, the body content is inserted via a batch update,
// and the caller then moves the document into the user's folder through the
// Drive API.
//
// Example usage:
//
//	client, err := docs.NewClient(ctx, cred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := client.CreateDocument(ctx, "contrato-alquiler", body)
//	if err != nil {
//	    log.Fatal(err)
//	}
package docs
