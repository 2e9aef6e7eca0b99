package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notariadigital/escribano/internal/drive"
)

// fakeStore is an in-memory DocumentStore for resolver tests.
type fakeStore struct {
	folders     map[string][]*drive.FileInfo // parentID -> folders
	documents   map[string][]*drive.FileInfo // folderID -> documents
	findErr     error
	createErr   error
	listErr     error
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		folders:   make(map[string][]*drive.FileInfo),
		documents: make(map[string][]*drive.FileInfo),
	}
}

func (f *fakeStore) FindChildFolder(ctx context.Context, parentID, name string) (*drive.FileInfo, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, folder := range f.folders[parentID] {
		if folder.Name == name && !folder.Trashed {
			return folder, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateFolder(ctx context.Context, name, parentID string) (*drive.FileInfo, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	folder := &drive.FileInfo{
		ID:       "folder-" + name,
		Name:     name,
		MimeType: drive.FolderMimeType,
		Parents:  []string{parentID},
	}
	f.folders[parentID] = append(f.folders[parentID], folder)
	return folder, nil
}

func (f *fakeStore) ListDocuments(ctx context.Context, folderID string, opts *drive.ListDocumentsOptions) ([]*drive.FileInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*drive.FileInfo
	for _, doc := range f.documents[folderID] {
		if opts != nil && opts.NameContains != "" && !strings.Contains(doc.Name, opts.NameContains) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeStore) MoveFile(ctx context.Context, fileID, addParentID, removeParentID string) (*drive.FileInfo, error) {
	return &drive.FileInfo{ID: fileID, Parents: []string{addParentID}}, nil
}

func (f *fakeStore) GetFile(ctx context.Context, fileID string) (*drive.FileInfo, error) {
	return &drive.FileInfo{ID: fileID}, nil
}

func (f *fakeStore) addDocument(folderID, name string) {
	f.documents[folderID] = append(f.documents[folderID], &drive.FileInfo{
		ID:       "doc-" + name,
		Name:     name,
		MimeType: drive.DocumentMimeType,
		Parents:  []string{folderID},
	})
}

func TestEnsureUserFolder_CreatesWhenMissing(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil)

	folderID, err := r.EnsureUserFolder(context.Background(), "ana@example.com", "root")
	require.NoError(t, err)
	assert.Equal(t, "folder-ana@example.com", folderID)
	assert.Equal(t, 1, store.createCalls)
}

func TestEnsureUserFolder_Idempotent(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil)

	first, err := r.EnsureUserFolder(context.Background(), "ana@example.com", "root")
	require.NoError(t, err)

	second, err := r.EnsureUserFolder(context.Background(), "ana@example.com", "root")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.createCalls, "second call should reuse the existing folder")
}

func TestEnsureUserFolder_PerUserFolders(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store, nil)

	ana, err := r.EnsureUserFolder(context.Background(), "ana@example.com", "root")
	require.NoError(t, err)
	luis, err := r.EnsureUserFolder(context.Background(), "luis@example.com", "root")
	require.NoError(t, err)

	assert.NotEqual(t, ana, luis)
}

func TestEnsureUserFolder_Validation(t *testing.T) {
	r := NewResolver(newFakeStore(), nil)

	_, err := r.EnsureUserFolder(context.Background(), "", "root")
	assert.Error(t, err)

	_, err = r.EnsureUserFolder(context.Background(), "ana@example.com", "")
	assert.Error(t, err)
}

func TestEnsureUserFolder_PropagatesErrors(t *testing.T) {
	store := newFakeStore()
	store.findErr = errors.New("drive unavailable")
	r := NewResolver(store, nil)

	_, err := r.EnsureUserFolder(context.Background(), "ana@example.com", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drive unavailable")

	store = newFakeStore()
	store.createErr = errors.New("quota exceeded")
	r = NewResolver(store, nil)

	_, err = r.EnsureUserFolder(context.Background(), "ana@example.com", "root")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNextVersionName(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		baseName string
		expected string
	}{
		{
			name:     "empty folder",
			existing: nil,
			baseName: "contrato-x",
			expected: "contrato-x",
		},
		{
			name:     "base and v2 present",
			existing: []string{"contrato-x", "contrato-x-v2"},
			baseName: "contrato-x",
			expected: "contrato-x-v3",
		},
		{
			name:     "only bare base",
			existing: []string{"contrato-x"},
			baseName: "contrato-x",
			expected: "contrato-x-v2",
		},
		{
			name:     "substring matches ignored",
			existing: []string{"contrato-x-old", "contrato-x-vfinal", "contrato-x-v2-final"},
			baseName: "contrato-x",
			expected: "contrato-x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			for _, name := range tt.existing {
				store.addDocument("folder-1", name)
			}
			r := NewResolver(store, nil)

			got, err := r.NextVersionName(context.Background(), "folder-1", tt.baseName)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNextVersionName_PropagatesListError(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("drive unavailable")
	r := NewResolver(store, nil)

	_, err := r.NextVersionName(context.Background(), "folder-1", "contrato-x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drive unavailable")
}

func TestNextVersionName_Validation(t *testing.T) {
	r := NewResolver(newFakeStore(), nil)

	_, err := r.NextVersionName(context.Background(), "", "contrato-x")
	assert.Error(t, err)

	_, err = r.NextVersionName(context.Background(), "folder-1", "")
	assert.Error(t, err)
}
