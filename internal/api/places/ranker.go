package places

import (
	"math"
	"sort"
	"strings"

	"travel-buddy-api/internal/types"
)

// Review-count thresholds for the credibility dampener. Like the leniency
// rating these are tunable constants, not invariants.
const (
	credibilityLowReviews = 50
	credibilityMidReviews = 100
)

// Ranker computes quality scores over places and orders candidate sets.
// All methods are pure functions.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Score computes the quality score for a place:
//
//	ratingScore      = rating * 2                          (0-10 scale)
//	popularityBonus  = min(log10(reviews+1) * 2, 5)        (0 when no reviews)
//	credibility      = 0.5 | 0.75 | 1.0                    (by review count)
//	score            = (ratingScore + popularityBonus) * credibility
//
// The logarithmic bonus keeps places with thousands of reviews from
// dominating; the credibility factor penalizes thinly-reviewed places.
func (r *Ranker) Score(place types.Place) float64 {
	ratingScore := place.Rating * 2

	var popularityBonus float64
	if place.ReviewCount > 0 {
		popularityBonus = math.Min(math.Log10(float64(place.ReviewCount)+1)*2, 5)
	}

	return (ratingScore + popularityBonus) * r.credibilityFactor(place.ReviewCount)
}

func (r *Ranker) credibilityFactor(reviewCount int) float64 {
	switch {
	case reviewCount < credibilityLowReviews:
		return 0.5
	case reviewCount < credibilityMidReviews:
		return 0.75
	default:
		return 1.0
	}
}

// Sort orders places descending by (score, rating, review count), each field
// breaking ties in the previous one. Full ties keep insertion order.
func (r *Ranker) Sort(in []types.Place) []types.ScoredPlace {
	scored := make([]types.ScoredPlace, len(in))
	for i, place := range in {
		scored[i] = types.ScoredPlace{Place: place, Score: r.Score(place)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Rating != scored[j].Rating {
			return scored[i].Rating > scored[j].Rating
		}
		return scored[i].ReviewCount > scored[j].ReviewCount
	})
	return scored
}

// RelevanceScore measures how well a place's name and tags align with the
// requested category: 2 points per matching name keyword, 1 per matching
// provider type. Used for diagnostics, not for the quality ordering.
func (r *Ranker) RelevanceScore(place types.Place, category string) int {
	var nameKeywords, relevantTypes []string
	switch category {
	case CategoryTouristPlaces:
		nameKeywords = []string{"temple", "museum", "park", "fort", "palace", "monument", "heritage", "scenic", "viewpoint", "attraction"}
		relevantTypes = []string{"tourist_attraction", "museum", "park", "church", "hindu_temple"}
	case CategoryRestaurants:
		nameKeywords = []string{"restaurant", "cafe", "kitchen", "dining", "food", "cuisine"}
		relevantTypes = []string{"restaurant", "cafe", "meal_takeaway"}
	case CategoryActivities:
		nameKeywords = []string{"club", "center", "studio", "sports", "gym", "adventure"}
		relevantTypes = []string{"gym", "spa", "night_club", "bowling_alley"}
	case CategoryHotels:
		nameKeywords = []string{"hotel", "resort", "lodge", "inn", "stay"}
		relevantTypes = []string{"lodging"}
	default:
		return 0
	}

	name := strings.ToLower(place.Name)
	score := 0
	for _, kw := range nameKeywords {
		if strings.Contains(name, kw) {
			score += 2
		}
	}
	for _, tag := range place.CategoryTags {
		lower := strings.ToLower(tag)
		for _, rel := range relevantTypes {
			if lower == rel {
				score++
			}
		}
	}
	return score
}
