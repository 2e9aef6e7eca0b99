package document_tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notariadigital/escribano/internal/docs"
	"github.com/notariadigital/escribano/internal/drive"
)

// fakeStore is an in-memory DocumentStore. Folders and documents live in one
// flat map keyed by ID; parentage is tracked on the FileInfo.
type fakeStore struct {
	files   map[string]*drive.FileInfo
	nextID  int
	listErr error
	moveErr error
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string]*drive.FileInfo)}
}

func (s *fakeStore) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *fakeStore) addDocument(name, parentID string) *drive.FileInfo {
	f := &drive.FileInfo{
		ID:       s.newID(),
		Name:     name,
		MimeType: drive.DocumentMimeType,
		Parents:  []string{parentID},
	}
	s.files[f.ID] = f
	return f
}

func (s *fakeStore) FindChildFolder(ctx context.Context, parentID, name string) (*drive.FileInfo, error) {
	for _, f := range s.files {
		if f.MimeType == drive.FolderMimeType && f.Name == name && hasParent(f, parentID) {
			return f, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateFolder(ctx context.Context, name, parentID string) (*drive.FileInfo, error) {
	f := &drive.FileInfo{
		ID:       s.newID(),
		Name:     name,
		MimeType: drive.FolderMimeType,
		Parents:  []string{parentID},
	}
	s.files[f.ID] = f
	return f, nil
}

func (s *fakeStore) ListDocuments(ctx context.Context, folderID string, opts *drive.ListDocumentsOptions) ([]*drive.FileInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*drive.FileInfo
	for _, f := range s.files {
		if f.MimeType != drive.DocumentMimeType || !hasParent(f, folderID) {
			continue
		}
		if opts != nil && opts.NameContains != "" && !strings.Contains(f.Name, opts.NameContains) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *fakeStore) MoveFile(ctx context.Context, fileID, addParentID, removeParentID string) (*drive.FileInfo, error) {
	if s.moveErr != nil {
		return nil, s.moveErr
	}
	f, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	parents := []string{addParentID}
	for _, p := range f.Parents {
		if p != removeParentID && p != addParentID {
			parents = append(parents, p)
		}
	}
	f.Parents = parents
	f.WebViewLink = "https://docs.google.com/document/d/" + fileID
	return f, nil
}

func (s *fakeStore) GetFile(ctx context.Context, fileID string) (*drive.FileInfo, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	f, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return f, nil
}

func hasParent(f *drive.FileInfo, parentID string) bool {
	for _, p := range f.Parents {
		if p == parentID {
			return true
		}
	}
	return false
}

// fakeCreator records created documents and parks them in the Drive root,
// like the Docs API does.
type fakeCreator struct {
	store   *fakeStore
	created []string
	err     error
}

func (c *fakeCreator) CreateDocument(ctx context.Context, title, content string) (*docs.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	f := c.store.addDocument(title, "root")
	c.created = append(c.created, title)
	return &docs.Document{ID: f.ID, Title: title}, nil
}

func testDeps(store *fakeStore, creator *fakeCreator) saveDeps {
	return saveDeps{store: store, creator: creator, logger: slog.Default()}
}

func TestSaveDocument_FirstSave(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}

	outcome, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "Escritura Compraventa", "texto del acta")
	require.NoError(t, err)

	assert.Equal(t, "escritura-compraventa", outcome.Document.Name)
	assert.Contains(t, outcome.UserMessage, "Documento guardado exitosamente como 'escritura-compraventa'")
	assert.Contains(t, outcome.UserMessage, outcome.Document.WebViewLink)

	// The user folder was created under the root and the document moved there.
	folder, err := store.FindChildFolder(ctx, "root-folder", "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, folder)
	assert.Equal(t, folder.ID, outcome.Document.FolderID)

	doc := store.files[outcome.Document.DocumentID]
	require.NotNil(t, doc)
	assert.True(t, hasParent(doc, folder.ID))
	assert.False(t, hasParent(doc, "root"))
}

func TestSaveDocument_SecondSaveGetsVersionSuffix(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}
	deps := testDeps(store, creator)

	first, err := saveDocument(ctx, deps, "ana@example.com", "root-folder", "Escritura Compraventa", "v1")
	require.NoError(t, err)
	assert.Equal(t, "escritura-compraventa", first.Document.Name)

	second, err := saveDocument(ctx, deps, "ana@example.com", "root-folder", "Escritura Compraventa", "v2")
	require.NoError(t, err)
	assert.Equal(t, "escritura-compraventa-v2", second.Document.Name)

	third, err := saveDocument(ctx, deps, "ana@example.com", "root-folder", "Escritura Compraventa", "v3")
	require.NoError(t, err)
	assert.Equal(t, "escritura-compraventa-v3", third.Document.Name)
}

func TestSaveDocument_NormalizesAccentedTitle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}

	outcome, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "Poder General Señor Gómez", "texto")
	require.NoError(t, err)
	assert.Equal(t, "poder-general-senor-gomez", outcome.Document.Name)
}

func TestSaveDocument_EmptyNormalizedTitle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}

	_, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "¡¿!?", "texto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "normalizes to an empty name")
	assert.Empty(t, creator.created, "no document should be created for an unusable title")
}

func TestSaveDocument_ListingFailureFallsBackToBaseName(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}

	// Folder lookup must succeed, only the version listing fails: pre-create
	// the folder, then arm the error.
	_, err := store.CreateFolder(ctx, "ana@example.com", "root-folder")
	require.NoError(t, err)
	store.listErr = errors.New("transient listing failure")

	outcome, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "Escritura Compraventa", "texto")
	require.NoError(t, err)
	assert.Equal(t, "escritura-compraventa", outcome.Document.Name)
}

func TestSaveDocument_MoveFailureIsAnError(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}
	store.moveErr = errors.New("move rejected")

	_, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "Escritura Compraventa", "texto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to move document")
}

func TestSaveDocument_LinkLookupFailureUsesMoveResponse(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}
	store.getErr = errors.New("metadata lookup failed")

	outcome, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "Escritura Compraventa", "texto")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/document/d/"+outcome.Document.DocumentID, outcome.Document.WebViewLink)
}

func TestSaveDocument_ReusesExistingUserFolder(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	creator := &fakeCreator{store: store}

	existing, err := store.CreateFolder(ctx, "ana@example.com", "root-folder")
	require.NoError(t, err)

	outcome, err := saveDocument(ctx, testDeps(store, creator), "ana@example.com", "root-folder", "Testamento", "texto")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, outcome.Document.FolderID)
}

func TestListUserDocuments(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()

	folder, err := store.CreateFolder(ctx, "ana@example.com", "root-folder")
	require.NoError(t, err)
	store.addDocument("escritura-compraventa", folder.ID)
	store.addDocument("escritura-compraventa-v2", folder.ID)
	store.addDocument("testamento", folder.ID)

	files, err := listUserDocuments(ctx, store, slog.Default(), "ana@example.com", "root-folder", "escritura", 20)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	all, err := listUserDocuments(ctx, store, slog.Default(), "ana@example.com", "root-folder", "", 20)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
