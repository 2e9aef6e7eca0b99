package session

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"
)

// DefaultSessionID is used for transports without per-request identity
// (stdio runs one conversation per process).
const DefaultSessionID = "default"

// Manager tracks per-conversation session state. Each authenticated caller
// gets its own State, so multiple users can share one server instance without
// seeing each other's credentials or documents.
type Manager struct {
	sessions       map[string]*State
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan bool
	sessionTimeout time.Duration
	logger         *slog.Logger

	onCreated func()
	onRemoved func()
}

// NewManager creates a session manager with a 24h idle timeout.
func NewManager() *Manager {
	return NewManagerWithLogger(24*time.Hour, slog.Default())
}

// NewManagerWithTimeout creates a session manager with a custom idle timeout.
func NewManagerWithTimeout(timeout time.Duration) *Manager {
	return NewManagerWithLogger(timeout, slog.Default())
}

// NewManagerWithLogger creates a session manager with custom timeout and logger.
func NewManagerWithLogger(timeout time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		sessions:       make(map[string]*State),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan bool),
		sessionTimeout: timeout,
		logger:         logger,
	}

	// Start cleanup goroutine
	go m.cleanupExpiredSessions()

	return m
}

// SetLifecycleHooks registers callbacks invoked when a session is created or
// removed (explicitly or by idle cleanup). Used for the active-session gauge.
// Must be called before the manager is shared between goroutines.
func (m *Manager) SetLifecycleHooks(onCreated, onRemoved func()) {
	m.onCreated = onCreated
	m.onRemoved = onRemoved
}

// GetForUser returns the session state for an authenticated user, creating
// it on first use. The session ID is a hash of the email so identifiers in
// session listings never carry raw addresses, while the same user keeps the
// same session across token refreshes.
func (m *Manager) GetForUser(email string) *State {
	return m.Get(generateSessionID(email))
}

// Get returns the state for a session, creating it on first use.
func (m *Manager) Get(sessionID string) *State {
	m.mu.RLock()
	state, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		state.Touch()
		return state
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.sessions[sessionID]; ok {
		state.Touch()
		return state
	}
	state = NewState()
	m.sessions[sessionID] = state
	if m.onCreated != nil {
		m.onCreated()
	}
	return state
}

// Remove deletes a session and its state.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return
	}
	delete(m.sessions, sessionID)
	if m.onRemoved != nil {
		m.onRemoved()
	}
}

// List returns all active session IDs.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		ids = append(ids, sessionID)
	}
	return ids
}

// generateSessionID creates a stable session ID from a caller identity.
func generateSessionID(identity string) string {
	hash := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(hash[:])
}

// cleanupExpiredSessions periodically removes idle sessions.
func (m *Manager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expiredCount := 0
			for sessionID, state := range m.sessions {
				if now.Sub(state.LastAccess()) > m.sessionTimeout {
					delete(m.sessions, sessionID)
					if m.onRemoved != nil {
						m.onRemoved()
					}
					expiredCount++
				}
			}
			m.mu.Unlock()
			if expiredCount > 0 {
				m.logger.Info("Cleaned up expired sessions", "count", expiredCount)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine.
func (m *Manager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
