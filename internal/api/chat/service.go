package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"travel-buddy-api/app/observability/metrics"
	generativeAI "travel-buddy-api/internal/api/generative_ai"
	"travel-buddy-api/internal/api/places"
	"travel-buddy-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service generates grounded travel recommendations. Generate always returns
// displayable text: provider failures come back as apology text, never as an
// error. The only error cause is context cancellation.
type Service interface {
	Generate(ctx context.Context, conv *Conversation, ranked []types.ScoredPlace, category, query string) (string, error)
}

// ServiceImpl builds prompts from ranked places plus the conversation's
// context window and calls the chat model. Duplicate questions are detected
// by an idempotency key at the entry point; a repeated question returns the
// prior answer without a second model call, and concurrent duplicates are
// collapsed by singleflight.
type ServiceImpl struct {
	logger   *slog.Logger
	model    generativeAI.ChatModel
	answers  *cache.Cache
	inFlight singleflight.Group
}

func NewServiceImpl(model generativeAI.ChatModel, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		model:   model,
		answers: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *ServiceImpl) Generate(ctx context.Context, conv *Conversation, ranked []types.ScoredPlace, category, query string) (string, error) {
	ctx, span := otel.Tracer("RecommendationService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("conversation.id", conv.ID.String()),
		attribute.String("recommendation.category", category),
		attribute.Int("recommendation.places", len(ranked)),
	))
	defer span.End()

	key := idempotencyKey(conv.ID, query)
	if prior, found := s.answers.Get(key); found {
		s.logger.InfoContext(ctx, "Duplicate question detected, returning prior answer",
			slog.String("conversationID", conv.ID.String()))
		span.SetStatus(codes.Ok, "Duplicate suppressed")
		return prior.(string), nil
	}

	reply, err, _ := s.inFlight.Do(key, func() (interface{}, error) {
		return s.generate(ctx, conv, ranked, category, query, key)
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetStatus(codes.Ok, "Recommendation generated")
	return reply.(string), nil
}

func (s *ServiceImpl) generate(ctx context.Context, conv *Conversation, ranked []types.ScoredPlace, category, query, key string) (string, error) {
	// The window is captured before the new turn is recorded so the prompt
	// does not contain the question twice.
	window := conv.Context.ContextWindow()
	messages := buildMessages(window, ranked, query, category)

	start := time.Now()
	if m := metrics.Get(); m != nil {
		m.LLMRequestsTotal.Add(ctx, 1)
	}

	reply, err := s.model.Complete(ctx, messages)
	if m := metrics.Get(); m != nil {
		m.LLMRequestDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if m := metrics.Get(); m != nil {
			m.LLMErrorsTotal.Add(ctx, 1)
		}
		s.logger.ErrorContext(ctx, "LLM provider call failed", slog.Any("error", err))
		reply = fmt.Sprintf("Sorry, I encountered an error generating recommendations: %v", err)
	} else {
		s.answers.Set(key, reply, cache.DefaultExpiration)
	}

	conv.Context.Record(types.RoleUser, query, map[string]string{
		"query_type":    category,
		"results_count": fmt.Sprintf("%d", len(ranked)),
	})
	conv.Context.Record(types.RoleAssistant, reply, nil)
	return reply, nil
}

// idempotencyKey hashes the trimmed, lowercased question together with the
// conversation id, so a re-rendered UI resubmitting the same question cannot
// trigger a second provider call.
func idempotencyKey(conversationID uuid.UUID, query string) string {
	sum := sha256.Sum256([]byte(conversationID.String() + "|" + strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

// DefaultUserQuery builds the canonical first question for a fresh search.
// Activities get extra steering because the provider's activity types bleed
// into spas, hotels and shopping.
func DefaultUserQuery(category, location string) string {
	if category == places.CategoryActivities {
		return fmt.Sprintf("Show me the best activities in %s, exclude spas, hotels, temples, restaurants, accommodation, and shopping. Only show actual activities and experiences.", location)
	}
	label := strings.ReplaceAll(category, "_", " ")
	return fmt.Sprintf("Show me the best %s in %s", label, location)
}
