package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"travel-buddy-api/internal/types"
)

const (
	// maxLogMessages caps the stored conversation log; oldest entries are
	// evicted first once the cap is exceeded.
	maxLogMessages = 20

	// contextWindowSize is the number of most-recent messages ever sent to
	// the model.
	contextWindowSize = 10
)

// ContextManager owns one conversation's bounded, ordered message log.
// Mutation only happens through this API; safe for concurrent use so one
// conversation may be shared across requests.
type ContextManager struct {
	mu       sync.Mutex
	messages []types.ConversationMessage
}

func NewContextManager() *ContextManager {
	return &ContextManager{}
}

// Record appends a message with a generated id and timestamp, evicting from
// the front when the log exceeds its cap.
func (cm *ContextManager) Record(role, content string, metadata map[string]string) types.ConversationMessage {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	msg := types.ConversationMessage{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	cm.messages = append(cm.messages, msg)
	if overflow := len(cm.messages) - maxLogMessages; overflow > 0 {
		cm.messages = append(cm.messages[:0], cm.messages[overflow:]...)
	}
	return msg
}

// ContextWindow returns the most recent messages in chronological order,
// stripped down to the role/content shape the model call needs.
func (cm *ContextManager) ContextWindow() []types.ChatMessage {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	start := 0
	if len(cm.messages) > contextWindowSize {
		start = len(cm.messages) - contextWindowSize
	}
	window := make([]types.ChatMessage, 0, len(cm.messages)-start)
	for _, msg := range cm.messages[start:] {
		window = append(window, types.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return window
}

// Messages returns a copy of the full log.
func (cm *ContextManager) Messages() []types.ConversationMessage {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	out := make([]types.ConversationMessage, len(cm.messages))
	copy(out, cm.messages)
	return out
}

// Len reports the current log length.
func (cm *ContextManager) Len() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.messages)
}

// Clear empties the log.
func (cm *ContextManager) Clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.messages = nil
}

// ExportJSON serializes the full log for download by the caller.
func (cm *ContextManager) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(cm.Messages(), "", "  ")
}
