package generativeAI

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"travel-buddy-api/internal/types"
)

// GatewayOptions configures the OpenAI-compatible chat-completion client.
// The endpoint is an Azure-style deployment URL; Temperature and MaxTokens
// are fixed for every call per the interactive-latency contract.
type GatewayOptions struct {
	Endpoint    string // e.g. https://gateway.example.com/openai
	Deployment  string
	APIVersion  string
	AppKey      string
	Temperature float32
	MaxTokens   int

	TokenURL     string
	ClientID     string
	ClientSecret string
}

var _ ChatModel = (*GatewayClient)(nil)

// GatewayClient talks to an OpenAI-compatible chat-completion endpoint behind
// an OAuth client-credentials gateway. On a credential rejection it refreshes
// the token and retries exactly once; no other retries, so a failing provider
// keeps interactive latency bounded.
type GatewayClient struct {
	opts       GatewayOptions
	tokens     *tokenCache
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGatewayClient(opts GatewayOptions, logger *slog.Logger) *GatewayClient {
	return &GatewayClient{
		opts:       opts,
		tokens:     newTokenCache(opts.TokenURL, opts.ClientID, opts.ClientSecret),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type chatCompletionRequest struct {
	Messages    []types.ChatMessage `json:"messages"`
	Temperature float32             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
	User        string              `json:"user,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message types.ChatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the message sequence to the deployment and returns the
// generated text.
func (c *GatewayClient) Complete(ctx context.Context, messages []types.ChatMessage) (string, error) {
	reply, err := c.completeOnce(ctx, messages)
	if errors.Is(err, ErrAuthExpired) {
		c.logger.InfoContext(ctx, "LLM credential rejected, refreshing token and retrying once")
		if refreshErr := c.tokens.Refresh(ctx); refreshErr != nil {
			return "", refreshErr
		}
		reply, err = c.completeOnce(ctx, messages)
	}
	return reply, err
}

func (c *GatewayClient) completeOnce(ctx context.Context, messages []types.ChatMessage) (string, error) {
	bearer, err := c.tokens.Bearer(ctx)
	if err != nil {
		return "", err
	}

	payload := chatCompletionRequest{
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	if c.opts.AppKey != "" {
		user, err := json.Marshal(map[string]string{"appkey": c.opts.AppKey})
		if err != nil {
			return "", fmt.Errorf("failed to marshal appkey: %w", err)
		}
		payload.User = string(user)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/deployments/%s/chat/completions?api-version=%s",
		c.opts.Endpoint, c.opts.Deployment, c.opts.APIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: status %d: %s", ErrAuthExpired, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM provider error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}
	return parsed.Choices[0].Message.Content, nil
}
