// Package webserver provides the web frontend HTTP server, its session
// management and the backend API client.
package webserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nutriva/nutriva/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Session is the per-tab authentication state. It lives only in this
// process's memory: nothing here survives a restart and nothing is
// shared across tabs that do not share the cookie.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	UserEmail          string
	UserName           string
	needsPreferences   bool
	editingPreferences bool
}

// SetIdentity attaches a logged-in identity to the session.
func (s *Session) SetIdentity(email, name string) {
	s.UserEmail = email
	s.UserName = name
}

// Identity returns the current identity; both values are empty when no
// user is logged in.
func (s *Session) Identity() (email, name string) {
	return s.UserEmail, s.UserName
}

// Authenticated reports whether an identity is attached.
func (s *Session) Authenticated() bool {
	return s.UserEmail != ""
}

// Clear removes every session key at once.
func (s *Session) Clear() {
	s.UserEmail = ""
	s.UserName = ""
	s.needsPreferences = false
	s.editingPreferences = false
}

// MarkNeedsPreferences flags that the user has not completed preferences.
func (s *Session) MarkNeedsPreferences() {
	s.needsPreferences = true
}

// ClearNeedsPreferences removes the needs-preferences flag.
func (s *Session) ClearNeedsPreferences() {
	s.needsPreferences = false
}

// NeedsPreferences reports whether the preference form is still pending.
func (s *Session) NeedsPreferences() bool {
	return s.needsPreferences
}

// MarkEditingPreferences sets the override that lets a user with complete
// preferences revisit the preferences page.
func (s *Session) MarkEditingPreferences() {
	s.editingPreferences = true
}

// ClearEditingPreferences removes the editing override.
func (s *Session) ClearEditingPreferences() {
	s.editingPreferences = false
}

// EditingPreferences reports whether the editing override is set.
func (s *Session) EditingPreferences() bool {
	return s.editingPreferences
}

// SessionStore manages user sessions
type SessionStore struct {
	sessions   map[string]*Session
	mu         sync.RWMutex
	cookieName string
	maxAge     time.Duration
	secure     bool
	logger     *zap.Logger
}

// NewSessionStore creates a new session store
func NewSessionStore(cfg *config.Config, logger *zap.Logger) *SessionStore {
	store := &SessionStore{
		sessions:   make(map[string]*Session),
		cookieName: cfg.Session.CookieName,
		maxAge:     cfg.Session.MaxAge,
		secure:     cfg.Session.Secure,
		logger:     logger,
	}

	go store.cleanupExpired()

	return store
}

// Get retrieves the session bound to the request cookie.
func (s *SessionStore) Get(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	session, exists := s.sessions[cookie.Value]
	s.mu.RUnlock()

	if !exists {
		return nil, http.ErrNoCookie
	}

	if time.Now().After(session.ExpiresAt) {
		s.Delete(session.ID)
		return nil, http.ErrNoCookie
	}

	return session, nil
}

// New creates a new anonymous session
func (s *SessionStore) New() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.maxAge),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Save binds the session to the response cookie.
func (s *SessionStore) Save(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
	})
}

// Delete removes a session
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// cleanupExpired removes expired sessions periodically
func (s *SessionStore) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, session := range s.sessions {
			if now.After(session.ExpiresAt) {
				delete(s.sessions, id)
				s.logger.Debug("Cleaned up expired session", zap.String("session_id", id))
			}
		}
		s.mu.Unlock()
	}
}
