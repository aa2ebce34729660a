package server

import (
	"time"

	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/mhmtszr/concurrent-swiss-map"
)

type sessionEntry struct {
	pending *skill.PendingConfirmation
	expires time.Time
}

// SessionStore keeps pending confirmations for hosts that do not echo
// session attributes back. Entries expire after ttl.
type SessionStore struct {
	entries *csmap.CsMap[string, sessionEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionStore creates an empty store whose entries live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		entries: csmap.Create[string, sessionEntry](),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live confirmation for id.
func (s *SessionStore) Get(id string) (*skill.PendingConfirmation, bool) {
	entry, ok := s.entries.Load(id)
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expires) {
		s.entries.Delete(id)
		return nil, false
	}
	return entry.pending, true
}

// Put stores pending for id and restarts its ttl.
func (s *SessionStore) Put(id string, pending *skill.PendingConfirmation) {
	s.entries.Store(id, sessionEntry{pending: pending, expires: s.now().Add(s.ttl)})
}

// Delete forgets id.
func (s *SessionStore) Delete(id string) {
	s.entries.Delete(id)
}

// Len counts stored entries, expired ones included until swept.
func (s *SessionStore) Len() int {
	return s.entries.Count()
}

// Sweep drops expired entries and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	var expired []string
	s.entries.Range(func(key string, value sessionEntry) bool {
		if now.After(value.expires) {
			expired = append(expired, key)
		}
		return false
	})
	for _, id := range expired {
		s.entries.Delete(id)
	}
	return len(expired)
}
