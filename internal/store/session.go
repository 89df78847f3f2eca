// internal/store/session.go
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/user/prakharai/internal/types"
)

const (
	defaultTitle  = "New Chat"
	titleMaxChars = 30
)

// SessionStore holds chat sessions in memory, newest first by insertion
// order (new sessions are prepended, matching the source behavior rather
// than sorting by timestamp). Every mutation persists the full collection
// through the snapshot adapter.
type SessionStore struct {
	snaps    *Snapshots
	mu       sync.RWMutex
	sessions []*types.ChatSession
	active   types.SessionID
}

// NewSessionStore loads the chats snapshot, treating a missing or corrupt
// snapshot as an empty collection.
func NewSessionStore(snaps *Snapshots) *SessionStore {
	s := &SessionStore{snaps: snaps}
	var saved []*types.ChatSession
	if snaps.Load(KeyChats, &saved) {
		s.sessions = saved
	}
	return s
}

// DeriveTitle builds a session title from the first user message: a prefix
// of at most 30 characters, with an ellipsis when truncated.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultTitle
	}
	runes := []rune(text)
	if len(runes) <= titleMaxChars {
		return text
	}
	return string(runes[:titleMaxChars]) + "..."
}

// Upsert replaces the message sequence of an existing session, or creates
// one (prepended) if the ID is unknown. The title is only updated when a
// non-empty title is supplied; on create an empty title falls back to the
// default label.
func (s *SessionStore) Upsert(id types.SessionID, messages []types.ChatMessage, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]types.ChatMessage, len(messages))
	copy(msgs, messages)

	for _, sess := range s.sessions {
		if sess.ID == id {
			sess.Messages = msgs
			if title != "" {
				sess.Title = title
			}
			sess.Timestamp = time.Now()
			return s.persist()
		}
	}

	if title == "" {
		title = defaultTitle
	}
	created := &types.ChatSession{
		ID:        id,
		Title:     title,
		Messages:  msgs,
		Timestamp: time.Now(),
	}
	s.sessions = append([]*types.ChatSession{created}, s.sessions...)
	return s.persist()
}

// Get returns the session with the given ID.
func (s *SessionStore) Get(id types.SessionID) (*types.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return nil, false
}

// List returns all sessions, newest first.
func (s *SessionStore) List() []*types.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.ChatSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Remove deletes the session if present; removing an absent ID is a no-op.
// If the removed session was active, the active pointer is cleared.
func (s *SessionStore) Remove(id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sess := range s.sessions {
		if sess.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			if s.active == id {
				s.active = ""
			}
			return s.persist()
		}
	}
	return nil
}

// Active returns the active session pointer; empty means a new, unsaved
// session.
func (s *SessionStore) Active() types.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive updates the active session pointer.
func (s *SessionStore) SetActive(id types.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
}

// persist writes the collection snapshot. Caller must hold the lock.
func (s *SessionStore) persist() error {
	return s.snaps.Save(KeyChats, s.sessions)
}
