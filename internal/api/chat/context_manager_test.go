package chat

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-buddy-api/internal/types"
)

func TestContextManager_CapsLogAtTwenty(t *testing.T) {
	cm := NewContextManager()

	for i := 0; i < 25; i++ {
		cm.Record(types.RoleUser, fmt.Sprintf("message %d", i), nil)
	}

	msgs := cm.Messages()
	require.Len(t, msgs, 20)
	// Oldest entries were evicted first.
	assert.Equal(t, "message 5", msgs[0].Content)
	assert.Equal(t, "message 24", msgs[19].Content)
}

func TestContextManager_WindowIsLastTenInOrder(t *testing.T) {
	cm := NewContextManager()

	for i := 0; i < 25; i++ {
		cm.Record(types.RoleUser, fmt.Sprintf("message %d", i), nil)
	}

	window := cm.ContextWindow()
	require.Len(t, window, 10)
	for i, msg := range window {
		assert.Equal(t, fmt.Sprintf("message %d", 15+i), msg.Content)
	}
}

func TestContextManager_WindowOnShortLog(t *testing.T) {
	cm := NewContextManager()
	cm.Record(types.RoleUser, "hello", nil)
	cm.Record(types.RoleAssistant, "hi there", nil)

	window := cm.ContextWindow()
	require.Len(t, window, 2)
	assert.Equal(t, types.ChatMessage{Role: types.RoleUser, Content: "hello"}, window[0])
	assert.Equal(t, types.ChatMessage{Role: types.RoleAssistant, Content: "hi there"}, window[1])
}

func TestContextManager_WindowStripsMetadata(t *testing.T) {
	cm := NewContextManager()
	cm.Record(types.RoleUser, "q", map[string]string{"location": "Vienna"})

	window := cm.ContextWindow()
	require.Len(t, window, 1)
	// ChatMessage only carries role and content by construction; the stored
	// message keeps its metadata.
	assert.Equal(t, "Vienna", cm.Messages()[0].Metadata["location"])
}

func TestContextManager_RecordAssignsIDAndTimestamp(t *testing.T) {
	cm := NewContextManager()
	msg := cm.Record(types.RoleAssistant, "answer", nil)

	assert.NotZero(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestContextManager_Clear(t *testing.T) {
	cm := NewContextManager()
	cm.Record(types.RoleUser, "q", nil)
	cm.Clear()

	assert.Zero(t, cm.Len())
	assert.Empty(t, cm.ContextWindow())
}

func TestContextManager_ExportJSON(t *testing.T) {
	cm := NewContextManager()
	cm.Record(types.RoleUser, "where to eat?", nil)

	payload, err := cm.ExportJSON()
	require.NoError(t, err)

	var exported []types.ConversationMessage
	require.NoError(t, json.Unmarshal(payload, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "where to eat?", exported[0].Content)
}
