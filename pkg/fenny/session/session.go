// Package session implements per-conversation state for the Fenny backend.
// Each browser conversation owns one session tracking its message history
// and upload counter. Sessions live in memory only and expire a fixed
// duration after creation.
package session

import (
	"sync"
	"time"
)

// DefaultMaxHistory is the limit of history entries kept per session.
const DefaultMaxHistory = 100

// Role identifies the author of a history message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a session's conversation history.
type Message struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

// Session holds the state of a single conversation. All mutable fields are
// guarded by mu so concurrent requests on the same session ID cannot race
// on the counters.
type Session struct {
	// ID is the opaque session token handed to the frontend.
	ID string

	// CreatedAt is the creation timestamp. Expiry is measured from here,
	// not from last activity.
	CreatedAt time.Time

	lastActive time.Time
	fileCount  int
	history    []Message
	maxHistory int

	mu sync.RWMutex
}

// Touch updates the last-activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// LastActiveAt returns the last-activity timestamp.
func (s *Session) LastActiveAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// AddFiles adds uploaded files to the counter and returns the new total.
// The session itself enforces no upper bound; the gateway checks the
// configured cap before calling this.
func (s *Session) AddFiles(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileCount += n
	s.lastActive = time.Now()
	return s.fileCount
}

// FileCount returns the number of files uploaded in this conversation.
func (s *Session) FileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fileCount
}

// AddMessage appends a message to the history, dropping the oldest entries
// beyond the history limit.
func (s *Session) AddMessage(role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, Message{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	s.lastActive = time.Now()
}

// History returns a copy of the conversation history.
func (s *Session) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}
