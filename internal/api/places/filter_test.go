package places

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travel-buddy-api/internal/types"
)

func TestFilter_ExcludeWinsOverInclude(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()

	// Contains both "cafe" (include) and "hospital" (exclude) for restaurants.
	place := types.Place{ID: "1", Name: "City Hospital Cafe", Rating: 4.9, ReviewCount: 1000}

	out := filter.Apply([]types.Place{place}, CategoryRestaurants, cfg.FilterRulesFor(CategoryRestaurants))
	assert.Empty(t, out)
}

func TestFilter_IncludeKeywordInName(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()

	place := types.Place{ID: "1", Name: "Blue Door Bistro"}
	out := filter.Apply([]types.Place{place}, CategoryRestaurants, cfg.FilterRulesFor(CategoryRestaurants))
	assert.Len(t, out, 1)
}

func TestFilter_ProviderTypeMatch(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()

	// No keyword match anywhere, but the provider tagged it as a restaurant.
	place := types.Place{ID: "1", Name: "Mama Rosa", CategoryTags: []string{"restaurant", "point_of_interest"}}
	out := filter.Apply([]types.Place{place}, CategoryRestaurants, cfg.FilterRulesFor(CategoryRestaurants))
	assert.Len(t, out, 1)
}

func TestFilter_TouristPlaceLeniency(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()
	rule := cfg.FilterRulesFor(CategoryTouristPlaces)

	t.Run("highly rated place passes without any match", func(t *testing.T) {
		place := types.Place{ID: "1", Name: "Sunset Point", Rating: 4.5, ReviewCount: 200, CategoryTags: []string{"establishment"}}
		out := filter.Apply([]types.Place{place}, CategoryTouristPlaces, rule)
		assert.Len(t, out, 1)
	})

	t.Run("below threshold it needs a match", func(t *testing.T) {
		place := types.Place{ID: "1", Name: "Sunset Point", Rating: 3.9, CategoryTags: []string{"establishment"}}
		out := filter.Apply([]types.Place{place}, CategoryTouristPlaces, rule)
		assert.Empty(t, out)
	})

	t.Run("leniency does not apply to other categories", func(t *testing.T) {
		place := types.Place{ID: "1", Name: "Sunset Point", Rating: 4.9, CategoryTags: []string{"establishment"}}
		out := filter.Apply([]types.Place{place}, CategoryHotels, cfg.FilterRulesFor(CategoryHotels))
		assert.Empty(t, out)
	})

	t.Run("exclusion still wins over leniency", func(t *testing.T) {
		place := types.Place{ID: "1", Name: "Grand Hotel Viewpoint", Rating: 4.8}
		out := filter.Apply([]types.Place{place}, CategoryTouristPlaces, rule)
		assert.Empty(t, out)
	})
}

func TestFilter_UnknownCategoryAcceptsEverything(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()

	in := []types.Place{
		{ID: "1", Name: "Anything"},
		{ID: "2", Name: "At All"},
	}
	out := filter.Apply(in, "bookstores", cfg.FilterRulesFor("bookstores"))
	assert.Equal(t, in, out)
}

func TestFilter_PreservesOrder(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()

	in := []types.Place{
		{ID: "a", Name: "First Cafe"},
		{ID: "b", Name: "Laundromat"}, // no match, dropped
		{ID: "c", Name: "Second Diner", CategoryTags: []string{"restaurant"}},
		{ID: "d", Name: "Third Kitchen"},
	}
	out := filter.Apply(in, CategoryRestaurants, cfg.FilterRulesFor(CategoryRestaurants))
	assert.Equal(t, []string{"a", "c", "d"}, placeIDs(out))
}

func TestFilter_MatchesAddressText(t *testing.T) {
	filter := NewFilter()
	cfg := NewSearchConfig()

	// Exclude keyword only appears in the address blob.
	place := types.Place{ID: "1", Name: "Quiet Corner", Address: "12 University Road"}
	out := filter.Apply([]types.Place{place}, CategoryRestaurants, cfg.FilterRulesFor(CategoryRestaurants))
	assert.Empty(t, out)
}

func placeIDs(in []types.Place) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = p.ID
	}
	return out
}
