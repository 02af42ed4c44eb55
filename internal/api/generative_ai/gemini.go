package generativeAI

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"travel-buddy-api/internal/types"
)

var _ ChatModel = (*GeminiModel)(nil)

// GeminiModel is the alternate chat model on the Gemini API, selected by
// configuration when no OAuth gateway is available. Gemini authenticates
// with a static API key, so the refresh/retry path does not apply here.
type GeminiModel struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGeminiModel(ctx context.Context, apiKey, model string, temperature float32, maxTokens int) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiModel{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   int32(maxTokens),
	}, nil
}

// Complete maps the role-tagged message list onto a Gemini chat: the system
// message becomes the system instruction, the context window becomes chat
// history, and the final user message is sent as the prompt.
func (g *GeminiModel) Complete(ctx context.Context, messages []types.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](g.temperature),
		MaxOutputTokens: g.maxTokens,
	}

	var history []*genai.Content
	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case types.RoleSystem:
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: msg.Content}},
			}
		case types.RoleAssistant:
			history = append(history, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			history = append(history, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}

	chat, err := g.client.Chats.Create(ctx, g.model, config, history)
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: messages[len(messages)-1].Content})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
