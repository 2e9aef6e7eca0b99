package session

import (
	"sync"
	"time"

	"github.com/notariadigital/escribano/internal/google"
)

// SavedDocument records a document the user saved during a conversation.
type SavedDocument struct {
	Name        string    `json:"name"`
	DocumentID  string    `json:"document_id"`
	FolderID    string    `json:"folder_id"`
	WebViewLink string    `json:"web_view_link,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// State holds everything scoped to one conversation session: the cached
// Google credential, the user's identity, and the documents saved so far.
// All access goes through typed accessors; callers never touch raw keys.
//
// State is safe for concurrent use. The credential slot follows last-write-wins
// semantics: concurrent writers simply overwrite each other.
type State struct {
	mu             sync.RWMutex
	credential     *google.Credential
	userEmail      string
	savedDocuments []SavedDocument
	lastAccess     time.Time
}

// NewState returns an empty session state.
func NewState() *State {
	return &State{lastAccess: time.Now()}
}

// Credential returns the cached credential, or nil if none is cached.
func (s *State) Credential() *google.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// SetCredential stores a credential in the session, overwriting any existing
// one.
func (s *State) SetCredential(cred *google.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = cred
}

// ClearCredential removes the cached credential. Clearing an empty slot is a
// no-op.
func (s *State) ClearCredential() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = nil
}

// UserEmail returns the user identity bound to this session, or "" if none
// has been established yet.
func (s *State) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userEmail
}

// SetUserEmail binds a user identity to this session.
func (s *State) SetUserEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userEmail = email
}

// RecordSavedDocument appends a saved-document entry to the session history.
func (s *State) RecordSavedDocument(doc SavedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedDocuments = append(s.savedDocuments, doc)
}

// SavedDocuments returns a copy of the session's saved-document history.
func (s *State) SavedDocuments() []SavedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]SavedDocument, len(s.savedDocuments))
	copy(docs, s.savedDocuments)
	return docs
}

// Touch updates the last-access timestamp.
func (s *State) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
}

// LastAccess returns the time the session was last used.
func (s *State) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}
