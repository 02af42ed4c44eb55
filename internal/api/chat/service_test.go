package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-buddy-api/internal/api/places"
	"travel-buddy-api/internal/types"
)

type stubModel struct {
	calls    atomic.Int64
	reply    string
	err      error
	lastMsgs []types.ChatMessage
}

func (s *stubModel) Complete(ctx context.Context, messages []types.ChatMessage) (string, error) {
	s.calls.Add(1)
	s.lastMsgs = messages
	return s.reply, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rankedFixture() []types.ScoredPlace {
	return []types.ScoredPlace{
		{Place: types.Place{ID: "1", Name: "Cafe Central", Rating: 4.6, ReviewCount: 5000}, Score: 13.2},
	}
}

func TestGenerate_RecordsBothTurns(t *testing.T) {
	model := &stubModel{reply: "Try Cafe Central."}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)

	reply, err := svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "where should I eat?")

	require.NoError(t, err)
	assert.Equal(t, "Try Cafe Central.", reply)

	msgs := conv.Context.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	assert.Equal(t, "where should I eat?", msgs[0].Content)
	assert.Equal(t, types.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Try Cafe Central.", msgs[1].Content)
}

func TestGenerate_PromptExcludesCurrentQuestionFromWindow(t *testing.T) {
	model := &stubModel{reply: "answer"}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)
	conv.Context.Record(types.RoleUser, "earlier question", nil)
	conv.Context.Record(types.RoleAssistant, "earlier answer", nil)

	_, err := svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "new question")
	require.NoError(t, err)

	// system + 2 window messages + user prompt
	require.Len(t, model.lastMsgs, 4)
	assert.Equal(t, "earlier question", model.lastMsgs[1].Content)
	assert.Contains(t, model.lastMsgs[3].Content, "new question")
}

func TestGenerate_DuplicateQuestionDoesNotCallModelAgain(t *testing.T) {
	model := &stubModel{reply: "the answer"}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)
	ranked := rankedFixture()

	first, err := svc.Generate(context.Background(), conv, ranked, places.CategoryRestaurants, "Best coffee?")
	require.NoError(t, err)

	// Same question, differing only in case and surrounding whitespace.
	second, err := svc.Generate(context.Background(), conv, ranked, places.CategoryRestaurants, "  best COFFEE?  ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, model.calls.Load())
	// The suppressed duplicate is not re-recorded either.
	assert.Equal(t, 2, conv.Context.Len())
}

func TestGenerate_DistinctQuestionsEachCallModel(t *testing.T) {
	model := &stubModel{reply: "an answer"}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)

	_, err := svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "Best coffee?")
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "Best cake?")
	require.NoError(t, err)

	assert.EqualValues(t, 2, model.calls.Load())
}

func TestGenerate_SameQuestionDifferentConversations(t *testing.T) {
	model := &stubModel{reply: "an answer"}
	svc := NewServiceImpl(model, testLogger())
	store := NewConversationStore()

	_, err := svc.Generate(context.Background(), store.GetOrCreate(uuid.Nil), rankedFixture(), places.CategoryRestaurants, "Best coffee?")
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), store.GetOrCreate(uuid.Nil), rankedFixture(), places.CategoryRestaurants, "Best coffee?")
	require.NoError(t, err)

	// Idempotency keys are scoped per conversation.
	assert.EqualValues(t, 2, model.calls.Load())
}

func TestGenerate_ProviderFailureBecomesApologyText(t *testing.T) {
	model := &stubModel{err: errors.New("deployment unavailable")}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)

	reply, err := svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "where should I eat?")

	require.NoError(t, err)
	assert.Contains(t, reply, "Sorry, I encountered an error generating recommendations")
	assert.Contains(t, reply, "deployment unavailable")

	// The apology is recorded as the assistant turn.
	msgs := conv.Context.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "Sorry")
}

func TestGenerate_FailedAnswersAreNotCached(t *testing.T) {
	model := &stubModel{err: errors.New("blip")}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)

	_, err := svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "q")
	require.NoError(t, err)

	// Once the provider recovers, the same question goes through again.
	model.err = nil
	model.reply = "recovered"
	reply, err := svc.Generate(context.Background(), conv, rankedFixture(), places.CategoryRestaurants, "q")
	require.NoError(t, err)

	assert.Equal(t, "recovered", reply)
	assert.EqualValues(t, 2, model.calls.Load())
}

func TestGenerate_CancelledContextSurfaces(t *testing.T) {
	model := &stubModel{err: context.Canceled}
	svc := NewServiceImpl(model, testLogger())
	conv := NewConversationStore().GetOrCreate(uuid.Nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Generate(ctx, conv, rankedFixture(), places.CategoryRestaurants, "q")
	assert.ErrorIs(t, err, context.Canceled)
}
