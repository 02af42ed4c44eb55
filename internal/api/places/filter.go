package places

import (
	"strings"

	"travel-buddy-api/internal/types"
)

// leniencyRating is the rating at or above which tourist places bypass
// keyword/type matching. The source data disagreed on this value over time,
// so it is a constant rather than an invariant.
const leniencyRating = 4.0

// Filter prunes a result set with category-specific keyword and
// provider-type matching. Stateless and safe for concurrent use.
type Filter struct{}

func NewFilter() *Filter {
	return &Filter{}
}

// Apply returns the places that match the category under the given rule,
// preserving input order. A permissive rule (unknown category) accepts
// everything. Exclusion always wins over inclusion.
func (f *Filter) Apply(in []types.Place, category string, rule types.CategoryFilterRule) []types.Place {
	if rule.Permissive() {
		return in
	}

	out := make([]types.Place, 0, len(in))
	for _, place := range in {
		blob := combinedText(place)

		if containsAny(blob, rule.ExcludeKeywords) {
			continue
		}

		matches := containsAny(blob, rule.IncludeKeywords) ||
			tagsIntersect(place.CategoryTags, rule.RelevantProviderTypes)

		// Highly rated tourist places pass even without a keyword or type
		// match; the provider's tagging is too sparse for landmarks.
		if category == CategoryTouristPlaces && place.Rating >= leniencyRating {
			matches = true
		}

		if matches {
			out = append(out, place)
		}
	}
	return out
}

// combinedText builds the lowercase blob keyword matching runs against:
// name, provider tags and address joined by spaces.
func combinedText(place types.Place) string {
	parts := make([]string, 0, len(place.CategoryTags)+2)
	parts = append(parts, place.Name)
	parts = append(parts, place.CategoryTags...)
	parts = append(parts, place.Address)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(blob string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(blob, kw) {
			return true
		}
	}
	return false
}

func tagsIntersect(tags, relevant []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, rel := range relevant {
			if lower == rel {
				return true
			}
		}
	}
	return false
}
