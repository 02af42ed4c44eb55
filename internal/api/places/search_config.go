package places

import "travel-buddy-api/internal/types"

// Logical search categories understood by the engine.
const (
	CategoryTouristPlaces = "tourist_places"
	CategoryRestaurants   = "restaurants"
	CategoryActivities    = "activities"
	CategoryHotels        = "hotels"
)

// SearchConfig is the single authoritative mapping from logical category to
// provider query terms and filter rules. Both the filter and the search
// service consume it, so the category/type tables live in exactly one place.
type SearchConfig struct {
	queries map[string][]string
	rules   map[string]types.CategoryFilterRule
}

func NewSearchConfig() *SearchConfig {
	return &SearchConfig{
		queries: map[string][]string{
			CategoryTouristPlaces: {
				"tourist_attraction",
				"museum",
				"park",
				"zoo",
				"amusement_park",
				"aquarium",
				"art_gallery",
				"hindu_temple",
				"natural_feature",
				"campground",
			},
			CategoryRestaurants: {
				"restaurant",
				"meal_takeaway",
				"cafe",
				"bakery",
				"bar",
				"food",
			},
			CategoryActivities: {
				"spa",
				"bowling_alley",
				"movie_theater",
				"night_club",
				"stadium",
				"tourist_attraction",
				"amusement_park",
				"park",
				"zoo",
				"aquarium",
				"casino",
				"movie_rental",
			},
			CategoryHotels: {
				"lodging",
				"campground",
				"rv_park",
			},
		},
		rules: map[string]types.CategoryFilterRule{
			CategoryTouristPlaces: {
				IncludeKeywords: []string{
					"tourist", "attraction", "museum", "park", "temple", "church",
					"monument", "heritage", "scenic", "viewpoint", "fort", "palace",
				},
				ExcludeKeywords: []string{
					"restaurant", "hotel", "lodge", "food", "cafe", "bar", "gym",
					"hospital", "bank", "university", "travel_agency",
				},
			},
			CategoryRestaurants: {
				IncludeKeywords: []string{
					"restaurant", "cafe", "food", "dining", "kitchen", "bistro",
					"eatery", "cuisine",
				},
				ExcludeKeywords: []string{
					"hotel", "lodge", "hospital", "gym", "temple", "museum",
					"university", "travel_agency",
				},
			},
			CategoryActivities: {
				IncludeKeywords: []string{
					"activity", "adventure", "sports", "recreation", "entertainment",
					"club", "center", "studio",
				},
				ExcludeKeywords: []string{
					"hotel", "restaurant", "spa", "food", "lodge", "hospital", "bank",
					"university", "hindu_temple", "church", "mosque", "travel_agency",
				},
			},
			CategoryHotels: {
				IncludeKeywords: []string{
					"hotel", "resort", "lodge", "accommodation", "stay", "inn",
					"guest house",
				},
				ExcludeKeywords: []string{
					"restaurant", "cafe", "food", "hospital", "gym", "temple",
					"museum", "university", "travel_agency",
				},
			},
		},
	}
}

// QueriesFor returns the provider query terms for a category. Unknown
// categories fall back to a single query of the category string itself, so a
// caller can search for raw provider types directly.
func (c *SearchConfig) QueriesFor(category string) []string {
	if queries, ok := c.queries[category]; ok {
		return queries
	}
	return []string{category}
}

// FilterRulesFor returns the filter rule for a category. Unknown categories
// get a permissive rule with no constraints.
func (c *SearchConfig) FilterRulesFor(category string) types.CategoryFilterRule {
	rule, ok := c.rules[category]
	if !ok {
		return types.CategoryFilterRule{}
	}
	// The relevant provider types for filtering are the same table the search
	// queries are built from.
	rule.RelevantProviderTypes = c.queries[category]
	return rule
}

// KnownCategories lists the configured categories, mainly for request
// validation at the handler boundary.
func (c *SearchConfig) KnownCategories() []string {
	return []string{CategoryTouristPlaces, CategoryRestaurants, CategoryActivities, CategoryHotels}
}
