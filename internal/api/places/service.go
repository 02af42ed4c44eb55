package places

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"travel-buddy-api/app/observability/metrics"
	"travel-buddy-api/internal/types"
)

const (
	// MaxResults is the cap on the ranked result set returned to callers.
	MaxResults = 10

	// DefaultRadiusM is used when the caller does not supply a radius.
	DefaultRadiusM = 50000

	maxSearchAttempts = 3
	baseBackoff       = 200 * time.Millisecond
)

var _ Service = (*ServiceImpl)(nil)

// Service is the place-search contract exposed to the rest of the
// application. Unresolvable locations and empty provider result sets are
// no-data conditions and yield an empty slice with a nil error; only
// permanent provider errors (permission denied, invalid request) surface as
// errors so callers can distinguish "nothing found" from "request was bad".
type Service interface {
	SearchPlaces(ctx context.Context, location, category string, radiusM int) ([]types.ScoredPlace, error)
	SearchPlacesByCoords(ctx context.Context, coords types.Coordinates, category string, radiusM int) ([]types.ScoredPlace, error)
	LocationName(ctx context.Context, coords types.Coordinates) (string, error)
	SearchNearbyLocalities(ctx context.Context, location string, radiusKm int) ([]types.ScoredPlace, error)
	TopRatedPlaces(ctx context.Context, location, category string, minRating float64, minReviews, radiusM int) ([]types.ScoredPlace, error)
}

// ServiceImpl orchestrates geocoding, rate-limited nearby searches,
// de-duplication, filtering, ranking and truncation.
type ServiceImpl struct {
	logger       *slog.Logger
	provider     Provider
	limiter      *RateLimiter
	searchConfig *SearchConfig
	filter       *Filter
	ranker       *Ranker
	geocodeCache *cache.Cache

	// sleep is swappable so retry backoff can be observed in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewServiceImpl(provider Provider, limiter *RateLimiter, searchConfig *SearchConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		provider:     provider,
		limiter:      limiter,
		searchConfig: searchConfig,
		filter:       NewFilter(),
		ranker:       NewRanker(),
		geocodeCache: cache.New(24*time.Hour, 1*time.Hour),
		sleep:        sleepCtx,
	}
}

// SearchPlaces resolves a free-text location and runs the full search
// pipeline for the category. An unresolvable location returns an empty
// result, not an error.
func (s *ServiceImpl) SearchPlaces(ctx context.Context, location, category string, radiusM int) ([]types.ScoredPlace, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchPlaces", trace.WithAttributes(
		attribute.String("search.location", location),
		attribute.String("search.category", category),
	))
	defer span.End()

	coords, err := s.geocode(ctx, location)
	if err != nil {
		span.RecordError(err)
		s.countError(ctx)
		return nil, err
	}
	if coords == nil {
		s.logger.InfoContext(ctx, "Location could not be geocoded", slog.String("location", location))
		span.SetStatus(codes.Ok, "No geocode result")
		return []types.ScoredPlace{}, nil
	}

	return s.searchAt(ctx, span, *coords, category, radiusM)
}

// SearchPlacesByCoords runs the search pipeline directly from a coordinate
// pair, the "use my current location" entry point.
func (s *ServiceImpl) SearchPlacesByCoords(ctx context.Context, coords types.Coordinates, category string, radiusM int) ([]types.ScoredPlace, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchPlacesByCoords", trace.WithAttributes(
		attribute.Float64("search.lat", coords.Latitude),
		attribute.Float64("search.lng", coords.Longitude),
		attribute.String("search.category", category),
	))
	defer span.End()

	return s.searchAt(ctx, span, coords, category, radiusM)
}

func (s *ServiceImpl) searchAt(ctx context.Context, span trace.Span, coords types.Coordinates, category string, radiusM int) ([]types.ScoredPlace, error) {
	start := time.Now()
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}

	var accumulated []types.Place
	for _, term := range s.searchConfig.QueriesFor(category) {
		results, err := s.nearbyWithRetry(ctx, coords, radiusM, term)
		if err != nil {
			if IsPermanentProviderErr(err) || ctx.Err() != nil {
				span.RecordError(err)
				s.countError(ctx)
				return nil, fmt.Errorf("nearby search for %q failed: %w", term, err)
			}
			// Transient failure on a single query term is not fatal to the
			// overall search.
			s.logger.WarnContext(ctx, "Skipping query term after retries",
				slog.String("term", term), slog.Any("error", err))
			continue
		}
		accumulated = append(accumulated, results...)
	}

	unique := dedupeByID(accumulated)
	rule := s.searchConfig.FilterRulesFor(category)
	filtered := s.filter.Apply(unique, category, rule)
	ranked := s.ranker.Sort(filtered)
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}

	s.logTopResults(ctx, ranked, category)
	if m := metrics.Get(); m != nil {
		m.PlaceSearchRequestsTotal.Add(ctx, 1)
		m.PlaceSearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}
	span.SetAttributes(attribute.Int("search.results", len(ranked)))
	span.SetStatus(codes.Ok, "Search completed")
	return ranked, nil
}

// LocationName reverse-geocodes coordinates into a display address. An empty
// string means the provider had no answer.
func (s *ServiceImpl) LocationName(ctx context.Context, coords types.Coordinates) (string, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "LocationName")
	defer span.End()

	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}
	name, err := s.provider.ReverseGeocode(ctx, coords)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("reverse geocode failed: %w", err)
	}
	return name, nil
}

// SearchNearbyLocalities suggests towns and localities around a location,
// used to offer "places nearby worth visiting" alongside tourist searches.
func (s *ServiceImpl) SearchNearbyLocalities(ctx context.Context, location string, radiusKm int) ([]types.ScoredPlace, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchNearbyLocalities", trace.WithAttributes(
		attribute.String("search.location", location),
	))
	defer span.End()

	coords, err := s.geocode(ctx, location)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if coords == nil {
		return []types.ScoredPlace{}, nil
	}

	results, err := s.nearbyWithRetry(ctx, *coords, radiusKm*1000, "locality")
	if err != nil {
		if IsPermanentProviderErr(err) {
			span.RecordError(err)
			return nil, err
		}
		s.logger.WarnContext(ctx, "Nearby locality search failed", slog.Any("error", err))
		return []types.ScoredPlace{}, nil
	}

	ranked := s.ranker.Sort(results)
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}
	span.SetStatus(codes.Ok, "Nearby localities retrieved")
	return ranked, nil
}

// TopRatedPlaces runs a normal search and keeps only places meeting minimum
// rating and review-count thresholds.
func (s *ServiceImpl) TopRatedPlaces(ctx context.Context, location, category string, minRating float64, minReviews, radiusM int) ([]types.ScoredPlace, error) {
	ranked, err := s.SearchPlaces(ctx, location, category, radiusM)
	if err != nil {
		return nil, err
	}
	out := make([]types.ScoredPlace, 0, len(ranked))
	for _, place := range ranked {
		if place.Rating >= minRating && place.ReviewCount >= minReviews {
			out = append(out, place)
		}
	}
	return out, nil
}

func (s *ServiceImpl) geocode(ctx context.Context, location string) (*types.Coordinates, error) {
	if cached, found := s.geocodeCache.Get(location); found {
		coords := cached.(types.Coordinates)
		return &coords, nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	coords, err := s.provider.Geocode(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("geocode failed: %w", err)
	}
	if coords != nil {
		s.geocodeCache.Set(location, *coords, cache.DefaultExpiration)
	}
	return coords, nil
}

// nearbyWithRetry issues one rate-limited nearby search with exponential
// backoff on transient errors. Permanent errors abort immediately.
func (s *ServiceImpl) nearbyWithRetry(ctx context.Context, coords types.Coordinates, radiusM int, term string) ([]types.Place, error) {
	backoff := baseBackoff
	var lastErr error
	for attempt := 1; attempt <= maxSearchAttempts; attempt++ {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		if m := metrics.Get(); m != nil {
			m.ProviderCallsTotal.Add(ctx, 1)
		}

		results, err := s.provider.NearbySearch(ctx, coords, radiusM, term)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if m := metrics.Get(); m != nil {
			m.ProviderErrorsTotal.Add(ctx, 1)
		}
		if IsPermanentProviderErr(err) {
			return nil, err
		}

		if attempt < maxSearchAttempts {
			s.logger.DebugContext(ctx, "Retrying nearby search",
				slog.String("term", term), slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff), slog.Any("error", err))
			if sleepErr := s.sleep(ctx, backoff); sleepErr != nil {
				return nil, sleepErr
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

func (s *ServiceImpl) countError(ctx context.Context) {
	if m := metrics.Get(); m != nil {
		m.PlaceSearchErrorsTotal.Add(ctx, 1)
	}
}

func (s *ServiceImpl) logTopResults(ctx context.Context, ranked []types.ScoredPlace, category string) {
	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	for i, place := range top {
		s.logger.DebugContext(ctx, "Top search result",
			slog.String("category", category),
			slog.Int("rank", i+1),
			slog.String("name", place.Name),
			slog.Float64("score", place.Score),
			slog.Float64("rating", place.Rating),
			slog.Int("reviews", place.ReviewCount),
		)
	}
}

// dedupeByID keeps the first occurrence of every place id, preserving order.
// Records without an id cannot be de-duplicated and are dropped.
func dedupeByID(in []types.Place) []types.Place {
	seen := make(map[string]struct{}, len(in))
	out := make([]types.Place, 0, len(in))
	for _, place := range in {
		if place.ID == "" {
			continue
		}
		if _, ok := seen[place.ID]; ok {
			continue
		}
		seen[place.ID] = struct{}{}
		out = append(out, place)
	}
	return out
}
