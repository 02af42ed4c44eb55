package places

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"travel-buddy-api/internal/api"
	"travel-buddy-api/internal/types"
)

type Handler struct {
	placesService Service
	logger        *slog.Logger
}

func NewHandler(placesService Service, logger *slog.Logger) *Handler {
	return &Handler{
		placesService: placesService,
		logger:        logger,
	}
}

// SearchPlaces handles POST /places/search. The request carries either a
// free-text location or a coordinate pair.
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "SearchPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SearchPlaces"))

	var req types.SearchPlacesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Category == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Category is required")
		return
	}
	if req.Location == "" && (req.Latitude == nil || req.Longitude == nil) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Either location or latitude/longitude is required")
		return
	}

	var (
		ranked []types.ScoredPlace
		err    error
	)
	if req.Location != "" {
		ranked, err = h.placesService.SearchPlaces(ctx, req.Location, req.Category, req.RadiusM)
	} else {
		coords := types.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
		ranked, err = h.placesService.SearchPlacesByCoords(ctx, coords, req.Category, req.RadiusM)
	}
	if err != nil {
		l.ErrorContext(ctx, "Place search failed", slog.Any("error", err))
		status := http.StatusBadGateway
		if IsPermanentProviderErr(err) {
			status = http.StatusBadRequest
		}
		api.ErrorResponse(w, r, status, fmt.Sprintf("Place search failed: %s", err.Error()))
		return
	}

	l.InfoContext(ctx, "Place search completed",
		slog.String("category", req.Category), slog.Int("results", len(ranked)))
	api.WriteJSONResponse(w, r, http.StatusOK, types.SearchPlacesResponse{
		Location: req.Location,
		Category: req.Category,
		Places:   ranked,
	})
}

// NearbyLocalities handles GET /places/nearby?location=...&radius_km=50 and
// returns suggested towns around a location.
func (h *Handler) NearbyLocalities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "NearbyLocalities", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/nearby"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "NearbyLocalities"))

	location := r.URL.Query().Get("location")
	if location == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "location query parameter is required")
		return
	}
	radiusKm := 50
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "radius_km must be a positive integer")
			return
		}
		radiusKm = parsed
	}

	nearby, err := h.placesService.SearchNearbyLocalities(ctx, location, radiusKm)
	if err != nil {
		l.ErrorContext(ctx, "Nearby locality search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, fmt.Sprintf("Nearby search failed: %s", err.Error()))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"location": location,
		"nearby":   nearby,
	})
}
