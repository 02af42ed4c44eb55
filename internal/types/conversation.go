package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationMessage is one turn of a conversation as stored in the
// conversation log, with bookkeeping the LLM call does not need.
type ConversationMessage struct {
	ID        uuid.UUID         `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ChatMessage is the minimal role/content shape sent to the LLM provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecommendationRequest asks for a generated recommendation. When a location
// (or coordinate pair) is present a fresh search runs first; otherwise the
// conversation's stored search results ground the answer (follow-up flow).
type RecommendationRequest struct {
	ConversationID uuid.UUID `json:"conversation_id,omitempty"`
	Location       string    `json:"location,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	Category       string    `json:"category"`
	Query          string    `json:"query,omitempty"`
	RadiusM        int       `json:"radius_m,omitempty"`
}

// RecommendationResponse carries the generated text. Reply is always
// displayable: provider failures surface as apology text, never as errors.
type RecommendationResponse struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Reply          string    `json:"reply"`
}

// RecordMessageRequest appends a message to a conversation log.
type RecordMessageRequest struct {
	Role     string            `json:"role"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
