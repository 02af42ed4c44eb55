package types

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a candidate venue returned by the geo-search provider. Instances
// are built fresh per search call and never mutated afterwards.
type Place struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Rating       float64      `json:"rating,omitempty"`       // 0.0-5.0, 0 when the provider reports none
	ReviewCount  int          `json:"review_count,omitempty"` // user ratings total
	PriceLevel   int          `json:"price_level,omitempty"`  // 0-4, 0 when absent
	CategoryTags []string     `json:"category_tags,omitempty"`
	Address      string       `json:"address,omitempty"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

// ScoredPlace pairs a Place with its computed quality score. Produced
// transiently by the ranker; not persisted.
type ScoredPlace struct {
	Place
	Score float64 `json:"score"`
}

// CategoryFilterRule holds the per-category keyword and provider-type
// configuration consumed by the place filter. Loaded once, immutable.
type CategoryFilterRule struct {
	IncludeKeywords       []string
	ExcludeKeywords       []string
	RelevantProviderTypes []string
}

// Permissive reports whether the rule imposes no constraints, which is the
// fallback for categories absent from configuration.
func (r CategoryFilterRule) Permissive() bool {
	return len(r.IncludeKeywords) == 0 && len(r.ExcludeKeywords) == 0 && len(r.RelevantProviderTypes) == 0
}

// SearchPlacesRequest is the payload for the place search endpoint. Either a
// free-text location or a coordinate pair must be set.
type SearchPlacesRequest struct {
	Location  string   `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Category  string   `json:"category"`
	RadiusM   int      `json:"radius_m,omitempty"`
}

// SearchPlacesResponse carries the ranked result set back to the caller.
type SearchPlacesResponse struct {
	Location string        `json:"location"`
	Category string        `json:"category"`
	Places   []ScoredPlace `json:"places"`
}
