package container

import (
	"context"
	"fmt"
	"log/slog"

	"travel-buddy-api/config"
	"travel-buddy-api/internal/api/chat"
	generativeAI "travel-buddy-api/internal/api/generative_ai"
	"travel-buddy-api/internal/api/places"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	PlacesHandler *places.Handler
	ChatHandler   *chat.Handler
	Conversations *chat.ConversationStore
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	gp := cfg.Providers.GooglePlaces
	provider, err := places.NewGoogleMapsProvider(gp.APIKey)
	if err != nil {
		logger.Error("Failed to initialize places provider", slog.Any("error", err))
		return nil, err
	}

	limiter := places.NewRateLimiter(gp.MaxPerSecond, gp.MaxPerDay, logger)
	searchConfig := places.NewSearchConfig()
	placesService := places.NewServiceImpl(provider, limiter, searchConfig, logger)
	placesHandler := places.NewHandler(placesService, logger)

	model, err := newChatModel(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize chat model", slog.Any("error", err))
		return nil, err
	}

	conversations := chat.NewConversationStore()
	chatService := chat.NewServiceImpl(model, logger)
	chatHandler := chat.NewHandler(chatService, placesService, conversations, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		PlacesHandler: placesHandler,
		ChatHandler:   chatHandler,
		Conversations: conversations,
	}, nil
}

func newChatModel(ctx context.Context, cfg *config.Config, logger *slog.Logger) (generativeAI.ChatModel, error) {
	llm := cfg.Providers.LLM
	switch llm.Provider {
	case "gemini":
		return generativeAI.NewGeminiModel(ctx, llm.Gemini.APIKey, llm.Gemini.Model, llm.Temperature, llm.MaxTokens)
	case "gateway", "":
		return generativeAI.NewGatewayClient(generativeAI.GatewayOptions{
			Endpoint:     llm.Gateway.Endpoint,
			Deployment:   llm.Gateway.Deployment,
			APIVersion:   llm.Gateway.APIVersion,
			AppKey:       llm.Gateway.AppKey,
			Temperature:  llm.Temperature,
			MaxTokens:    llm.MaxTokens,
			TokenURL:     llm.Gateway.OAuth.TokenURL,
			ClientID:     llm.Gateway.OAuth.ClientID,
			ClientSecret: llm.Gateway.OAuth.ClientSecret,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", llm.Provider)
	}
}
