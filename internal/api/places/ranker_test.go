package places

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"travel-buddy-api/internal/types"
)

func TestRanker_CredibilityFactor(t *testing.T) {
	ranker := NewRanker()

	tests := []struct {
		name        string
		reviewCount int
		expected    float64
	}{
		{"no reviews", 0, 0.5},
		{"just below low threshold", 49, 0.5},
		{"at low threshold", 50, 0.75},
		{"just below mid threshold", 99, 0.75},
		{"at mid threshold", 100, 1.0},
		{"well reviewed", 5000, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ranker.credibilityFactor(tt.reviewCount))
		})
	}
}

func TestRanker_Score(t *testing.T) {
	ranker := NewRanker()

	t.Run("zero place scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ranker.Score(types.Place{}))
	})

	t.Run("highly rated tourist place", func(t *testing.T) {
		// (4.5*2 + min(log10(201)*2, 5)) * 1.0
		place := types.Place{Rating: 4.5, ReviewCount: 200}
		expected := (9.0 + math.Log10(201)*2) * 1.0
		assert.InDelta(t, expected, ranker.Score(place), 1e-9)
		assert.InDelta(t, 13.606, ranker.Score(place), 0.001)
	})

	t.Run("popularity bonus capped at five", func(t *testing.T) {
		place := types.Place{Rating: 5.0, ReviewCount: 10_000_000}
		assert.InDelta(t, 15.0, ranker.Score(place), 1e-9)
	})

	t.Run("thin reviews halve the score", func(t *testing.T) {
		place := types.Place{Rating: 5.0, ReviewCount: 10}
		expected := (10.0 + math.Log10(11)*2) * 0.5
		assert.InDelta(t, expected, ranker.Score(place), 1e-9)
	})

	t.Run("no popularity bonus without reviews", func(t *testing.T) {
		place := types.Place{Rating: 4.0}
		assert.InDelta(t, 8.0*0.5, ranker.Score(place), 1e-9)
	})
}

func TestRanker_ScoreMonotonicity(t *testing.T) {
	ranker := NewRanker()

	t.Run("non-decreasing in rating", func(t *testing.T) {
		prev := -1.0
		for rating := 0.0; rating <= 5.0; rating += 0.5 {
			score := ranker.Score(types.Place{Rating: rating, ReviewCount: 120})
			assert.GreaterOrEqual(t, score, prev)
			prev = score
		}
	})

	t.Run("non-decreasing in review count", func(t *testing.T) {
		prev := -1.0
		for _, reviews := range []int{0, 1, 10, 49, 50, 99, 100, 500, 10000} {
			score := ranker.Score(types.Place{Rating: 4.0, ReviewCount: reviews})
			assert.GreaterOrEqual(t, score, prev)
			prev = score
		}
	})
}

func TestRanker_Sort(t *testing.T) {
	ranker := NewRanker()

	places := []types.Place{
		{ID: "low", Name: "Low", Rating: 3.0, ReviewCount: 20},
		{ID: "top", Name: "Top", Rating: 4.8, ReviewCount: 900},
		{ID: "mid", Name: "Mid", Rating: 4.2, ReviewCount: 150},
	}

	ranked := ranker.Sort(places)

	assert.Equal(t, []string{"top", "mid", "low"}, idsOf(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	t.Run("idempotent on sorted input", func(t *testing.T) {
		again := ranker.Sort(toPlaces(ranked))
		assert.Equal(t, idsOf(ranked), idsOf(again))
	})

	t.Run("rating breaks score ties", func(t *testing.T) {
		// Same score components except rating produce distinct scores, so
		// construct an actual tie: identical scores, different ratings is not
		// reachable through the formula; verify stability on full ties instead.
		tied := []types.Place{
			{ID: "first", Rating: 4.0, ReviewCount: 200},
			{ID: "second", Rating: 4.0, ReviewCount: 200},
		}
		got := ranker.Sort(tied)
		assert.Equal(t, []string{"first", "second"}, idsOf(got))
	})
}

func TestRanker_RelevanceScore(t *testing.T) {
	ranker := NewRanker()

	place := types.Place{
		Name:         "City History Museum",
		CategoryTags: []string{"museum", "tourist_attraction"},
	}
	// "museum" in name (+2), two matching types (+1 each)
	assert.Equal(t, 4, ranker.RelevanceScore(place, CategoryTouristPlaces))
	assert.Equal(t, 0, ranker.RelevanceScore(place, "unknown_category"))
}

func idsOf(in []types.ScoredPlace) []string {
	out := make([]string, len(in))
	for i, p := range in {
		out[i] = p.ID
	}
	return out
}

func toPlaces(in []types.ScoredPlace) []types.Place {
	out := make([]types.Place, len(in))
	for i, p := range in {
		out[i] = p.Place
	}
	return out
}
