package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"travel-buddy-api/internal/types"
)

// Provider error taxonomy. Quota errors are transient and retried with
// backoff; permission and invalid-request errors are permanent and propagate
// to the caller untouched.
var (
	ErrQuotaExceeded    = errors.New("places provider: quota exceeded")
	ErrPermissionDenied = errors.New("places provider: permission denied")
	ErrInvalidRequest   = errors.New("places provider: invalid request")
)

// IsPermanentProviderErr reports whether retrying the call cannot help.
func IsPermanentProviderErr(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrInvalidRequest)
}

// Provider is the narrow surface the search service needs from a geo-search
// backend. Geocode returns (nil, nil) and ReverseGeocode ("", nil) when the
// provider simply has no answer; that is a no-data condition, not an error.
type Provider interface {
	Geocode(ctx context.Context, address string) (*types.Coordinates, error)
	ReverseGeocode(ctx context.Context, coords types.Coordinates) (string, error)
	NearbySearch(ctx context.Context, coords types.Coordinates, radiusM int, placeType string) ([]types.Place, error)
}

var _ Provider = (*GoogleMapsProvider)(nil)

// GoogleMapsProvider implements Provider on the official Google Maps Go
// client (Geocoding + Places Nearby Search APIs).
type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleMapsProvider{client: client}, nil
}

func (p *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*types.Coordinates, error) {
	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, classifyMapsError(err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	loc := results[0].Geometry.Location
	return &types.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func (p *GoogleMapsProvider) ReverseGeocode(ctx context.Context, coords types.Coordinates) (string, error) {
	results, err := p.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude},
	})
	if err != nil {
		return "", classifyMapsError(err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}

func (p *GoogleMapsProvider) NearbySearch(ctx context.Context, coords types.Coordinates, radiusM int, placeType string) ([]types.Place, error) {
	resp, err := p.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude},
		Radius:   uint(radiusM),
		Type:     maps.PlaceType(placeType),
	})
	if err != nil {
		return nil, classifyMapsError(err)
	}

	out := make([]types.Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		out = append(out, placeFromSearchResult(result))
	}
	return out, nil
}

func placeFromSearchResult(result maps.PlacesSearchResult) types.Place {
	address := result.Vicinity
	if address == "" {
		address = result.FormattedAddress
	}
	return types.Place{
		ID:           result.PlaceID,
		Name:         result.Name,
		Rating:       float64(result.Rating),
		ReviewCount:  result.UserRatingsTotal,
		PriceLevel:   result.PriceLevel,
		CategoryTags: result.Types,
		Address:      address,
		Coordinates: &types.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
	}
}

// classifyMapsError maps the client's status-string errors onto the sentinel
// taxonomy. Unknown errors (network blips, timeouts) pass through unchanged
// and are treated as transient by the retry loop.
func classifyMapsError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "OVER_QUERY_LIMIT") || strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case strings.Contains(msg, "REQUEST_DENIED") || strings.Contains(msg, "PERMISSION_DENIED"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "INVALID_REQUEST"):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	default:
		return err
	}
}
