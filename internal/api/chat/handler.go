package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"travel-buddy-api/internal/api"
	"travel-buddy-api/internal/api/places"
	"travel-buddy-api/internal/types"
)

type Handler struct {
	chatService   Service
	placesService places.Service
	store         *ConversationStore
	logger        *slog.Logger
}

func NewHandler(chatService Service, placesService places.Service, store *ConversationStore, logger *slog.Logger) *Handler {
	return &Handler{
		chatService:   chatService,
		placesService: placesService,
		store:         store,
		logger:        logger,
	}
}

// Recommend handles POST /recommendations. With a location it runs a fresh
// search and answers the opening question; without one it treats the query
// as a follow-up grounded in the conversation's stored search results.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Recommend", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommendations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Recommend"))

	var req types.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Category is required")
		return
	}

	conv := h.store.GetOrCreate(req.ConversationID)
	l = l.With(slog.String("conversationID", conv.ID.String()))

	var (
		ranked   []types.ScoredPlace
		location string
		err      error
	)
	switch {
	case req.Location != "":
		location = req.Location
		ranked, err = h.placesService.SearchPlaces(ctx, req.Location, req.Category, req.RadiusM)
	case req.Latitude != nil && req.Longitude != nil:
		coords := types.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
		location, _ = h.placesService.LocationName(ctx, coords)
		if location == "" {
			location = fmt.Sprintf("Current Location (%.4f, %.4f)", coords.Latitude, coords.Longitude)
		}
		ranked, err = h.placesService.SearchPlacesByCoords(ctx, coords, req.Category, req.RadiusM)
	default:
		// Follow-up: reuse the conversation's stored results.
		var ok bool
		location, _, ranked, ok = conv.SearchResults()
		if !ok {
			api.ErrorResponse(w, r, http.StatusConflict, "Conversation has no search results yet; provide a location")
			return
		}
		if req.Query == "" {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Query is required for follow-up questions")
			return
		}
	}
	if err != nil {
		l.ErrorContext(ctx, "Search before recommendation failed", slog.Any("error", err))
		status := http.StatusBadGateway
		if places.IsPermanentProviderErr(err) {
			status = http.StatusBadRequest
		}
		api.ErrorResponse(w, r, status, fmt.Sprintf("Place search failed: %s", err.Error()))
		return
	}

	if req.Location != "" || req.Latitude != nil {
		conv.SetSearchResults(location, req.Category, ranked)
	}

	query := req.Query
	if query == "" {
		query = DefaultUserQuery(req.Category, location)
	}

	reply, err := h.chatService.Generate(ctx, conv, ranked, req.Category, query)
	if err != nil {
		l.ErrorContext(ctx, "Recommendation generation aborted", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Recommendation generation aborted")
		return
	}

	l.InfoContext(ctx, "Recommendation generated", slog.String("category", req.Category))
	api.WriteJSONResponse(w, r, http.StatusOK, types.RecommendationResponse{
		ConversationID: conv.ID,
		Reply:          reply,
	})
}

// RecordMessage handles POST /conversations/{conversationID}/messages.
func (h *Handler) RecordMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RecordMessage"))

	conv, ok := h.conversationFromPath(w, r)
	if !ok {
		return
	}

	var req types.RecordMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != types.RoleUser && req.Role != types.RoleAssistant {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Role must be user or assistant")
		return
	}
	if req.Content == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Content is required")
		return
	}

	msg := conv.Context.Record(req.Role, req.Content, req.Metadata)
	api.WriteJSONResponse(w, r, http.StatusCreated, msg)
}

// GetContext handles GET /conversations/{conversationID}/context and returns
// the trimmed window the next model call would see.
func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.conversationFromPath(w, r)
	if !ok {
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"conversation_id": conv.ID,
		"context":         conv.Context.ContextWindow(),
	})
}

// ClearHistory handles DELETE /conversations/{conversationID}/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.conversationFromPath(w, r)
	if !ok {
		return
	}
	conv.Context.Clear()
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"message": "Conversation history cleared"})
}

// ExportHistory handles GET /conversations/{conversationID}/export and
// returns the full log as downloadable JSON.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.conversationFromPath(w, r)
	if !ok {
		return
	}
	payload, err := conv.Context.ExportJSON()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to export history", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to export history")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=conversation.json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) conversationFromPath(w http.ResponseWriter, r *http.Request) (*Conversation, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid conversation ID format")
		return nil, false
	}
	conv, ok := h.store.Get(id)
	if !ok {
		api.ErrorResponse(w, r, http.StatusNotFound, "Conversation not found")
		return nil, false
	}
	return conv, true
}
