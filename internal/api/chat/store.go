package chat

import (
	"sync"

	"github.com/google/uuid"

	"travel-buddy-api/internal/types"
)

// Conversation bundles one session's message log with the search snapshot
// follow-up questions are grounded in. Conversations are addressed by id and
// passed explicitly into core calls; there is no ambient session state.
type Conversation struct {
	ID      uuid.UUID
	Context *ContextManager

	mu           sync.Mutex
	lastPlaces   []types.ScoredPlace
	lastCategory string
	lastLocation string
}

// SetSearchResults stores the ranked places a later follow-up question will
// be grounded in.
func (c *Conversation) SetSearchResults(location, category string, places []types.ScoredPlace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastLocation = location
	c.lastCategory = category
	c.lastPlaces = places
}

// SearchResults returns the stored snapshot; ok is false when the
// conversation has not run a search yet.
func (c *Conversation) SearchResults() (location, category string, places []types.ScoredPlace, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastPlaces == nil {
		return "", "", nil, false
	}
	return c.lastLocation, c.lastCategory, c.lastPlaces, true
}

// ConversationStore hands out conversation objects by id. In-memory only;
// durable session storage is the caller's concern.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[uuid.UUID]*Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[uuid.UUID]*Conversation),
	}
}

// GetOrCreate returns the conversation for id, creating it on first use.
// A nil id creates a conversation under a fresh id.
func (s *ConversationStore) GetOrCreate(id uuid.UUID) *Conversation {
	if id == uuid.Nil {
		id = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[id]; ok {
		return conv
	}
	conv := &Conversation{ID: id, Context: NewContextManager()}
	s.conversations[id] = conv
	return conv
}

// Get returns the conversation for id if it exists.
func (s *ConversationStore) Get(id uuid.UUID) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	return conv, ok
}

// Delete removes a conversation entirely.
func (s *ConversationStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}
