package quiz

import "sync"

// SessionStore holds the answer key of each user's most recently issued
// quiz. Process-ephemeral by design: it starts empty on every restart, and
// any outstanding ungraded quiz is silently lost.
//
// Invariants: at most one live entry per user (Put overwrites), and an entry
// is consumed exactly once (GetAndRemove is atomic).
type SessionStore struct {
	mu      sync.Mutex
	entries map[int64][]Question
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[int64][]Question),
	}
}

// Put records the issued quiz for the user, discarding any prior ungraded
// entry. Last-issued wins; this is not an error.
func (s *SessionStore) Put(userID int64, questions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = questions
}

// GetAndRemove atomically consumes the user's entry. The second return is
// false when no quiz is pending.
func (s *SessionStore) GetAndRemove(userID int64) ([]Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions, ok := s.entries[userID]
	if !ok {
		return nil, false
	}
	delete(s.entries, userID)
	return questions, true
}

// Len reports the number of pending quizzes, for diagnostics.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
