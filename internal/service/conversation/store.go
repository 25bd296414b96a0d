package conversation

import (
	"strings"
	"sync"
)

// DefaultMaxConversationLength is the number of You/AI pairs retained per user.
const DefaultMaxConversationLength = 5

// Store keeps a bounded, line-oriented transcript per user identifier.
//
// The mutex only protects the map itself. It is never held across a model call,
// and CommitExchange builds on the transcript observed by AppendExchange, so two
// overlapping exchanges for the same user race: the last commit wins and the
// other exchange silently disappears from the history.
type Store struct {
	mu        sync.RWMutex
	maxLength int
	lines     map[string][]string
}

// NewStore returns an empty Store. A non-positive maxLength falls back to
// DefaultMaxConversationLength.
func NewStore(maxLength int) *Store {
	if maxLength <= 0 {
		maxLength = DefaultMaxConversationLength
	}
	return &Store{
		maxLength: maxLength,
		lines:     make(map[string][]string),
	}
}

// MaxLength reports how many exchange pairs survive a commit.
func (s *Store) MaxLength() int {
	return s.maxLength
}

// AppendExchange builds the prompt for the next model call from the stored
// transcript. Nothing is persisted.
func (s *Store) AppendExchange(userID, userText string) (prompt, previous string) {
	previous = s.Transcript(userID)
	prompt = previous + "\nYou: " + userText + "\nAI:"
	return prompt, previous
}

// CommitExchange cleans the raw model output, appends the exchange to previous
// (the transcript returned by AppendExchange), trims the result to the last
// 2*maxLength lines, stores it and returns the cleaned text.
func (s *Store) CommitExchange(userID, previous, userText, raw string) string {
	cleaned := Clean(raw)
	next := strings.Split(previous+"\nYou: "+userText+"\nAI: "+cleaned, "\n")

	limit := 2 * s.maxLength
	if len(next) > limit {
		next = next[len(next)-limit:]
	}

	// copy so the trimmed head can be collected
	kept := append([]string(nil), next...)

	s.mu.Lock()
	s.lines[userID] = kept
	s.mu.Unlock()
	return cleaned
}

// Reset forgets the transcript for userID. Unknown identifiers are a no-op.
func (s *Store) Reset(userID string) {
	s.mu.Lock()
	delete(s.lines, userID)
	s.mu.Unlock()
}

// Transcript returns the stored transcript, or "" for an unknown user.
func (s *Store) Transcript(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.Join(s.lines[userID], "\n")
}

// Len reports the number of users with a stored transcript.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}
