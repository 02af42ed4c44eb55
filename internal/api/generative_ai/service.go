package generativeAI

import (
	"context"
	"errors"

	"travel-buddy-api/internal/types"
)

// ErrAuthExpired marks a provider rejection caused by an expired or invalid
// bearer credential. The gateway client refreshes and retries exactly once
// on it; anything persisting past that surfaces to the caller.
var ErrAuthExpired = errors.New("llm provider: credential expired")

// ChatModel is the contract for an LLM provider: one chat-completion call
// over an ordered list of role-tagged messages, returning generated text.
// Temperature and the token budget are fixed per client, not per call.
type ChatModel interface {
	Complete(ctx context.Context, messages []types.ChatMessage) (string, error)
}
