package chat

import (
	"fmt"
	"strings"

	"travel-buddy-api/internal/api/places"
	"travel-buddy-api/internal/types"
)

// maxPromptPlaces caps how many places are serialized into the user prompt.
const maxPromptPlaces = 10

const basePersonaPrompt = `You are Travel Buddy, an expert travel assistant that provides detailed, helpful, and personalized travel recommendations. You have access to real-time data about places, restaurants, hotels, and activities.`

var categoryFocusPrompts = map[string]string{
	places.CategoryTouristPlaces: `
Focus on providing information about:
- Top tourist attractions and landmarks
- Hidden gems and local favorites
- Cultural and historical sites
- Natural attractions
- Best times to visit each place
- Estimated time needed for each attraction`,
	places.CategoryRestaurants: `
Focus on providing information about:
- Restaurant names, cuisine types, and specialties
- Price ranges and estimated costs per person
- Popular dishes and must-try items
- Ambiance and dining experience
- Ratings and reviews summary
- Distance from the main location`,
	places.CategoryActivities: `
Focus on providing information about:
- Adventure activities and sports
- Cultural experiences and workshops
- Entertainment and nightlife
- Seasonal activities
- Age-appropriate recommendations
- Cost estimates and booking requirements`,
	places.CategoryHotels: `
Focus on providing information about:
- Hotel names, star ratings, and types
- Price ranges per night
- Key amenities and features
- Location advantages
- Guest rating summaries
- Booking recommendations`,
}

// systemPrompt returns the assistant persona plus the category focus block.
// Unknown categories get the persona alone.
func systemPrompt(category string) string {
	return basePersonaPrompt + categoryFocusPrompts[category]
}

// buildUserPrompt serializes the user query, the category and up to ten
// ranked places into the grounding prompt for the model.
func buildUserPrompt(ranked []types.ScoredPlace, userQuery, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n\n", userQuery)
	fmt.Fprintf(&b, "Query Type: %s\n\n", category)

	if len(ranked) > 0 {
		b.WriteString("Available Data:\n")
		limit := len(ranked)
		if limit > maxPromptPlaces {
			limit = maxPromptPlaces
		}
		for i := 0; i < limit; i++ {
			place := ranked[i]
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, place.Name)
			fmt.Fprintf(&b, "   Rating: %s\n", formatRating(place.Rating))
			fmt.Fprintf(&b, "   Address: %s\n", formatAddress(place.Address))
			fmt.Fprintf(&b, "   Price Level: %s\n", formatPriceLevel(place.PriceLevel))
			if len(place.CategoryTags) > 0 {
				tags := place.CategoryTags
				if len(tags) > 3 {
					tags = tags[:3]
				}
				fmt.Fprintf(&b, "   Categories: %s\n", strings.Join(tags, ", "))
			}
		}
	}

	fmt.Fprintf(&b, "\n\nPlease provide detailed recommendations for %s based on this data. "+
		"Format your response in a clear, organized manner with specific details about each recommendation.", category)
	return b.String()
}

func formatRating(rating float64) string {
	if rating <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", rating)
}

func formatAddress(address string) string {
	if address == "" {
		return "N/A"
	}
	return address
}

// formatPriceLevel renders the provider's 0-4 price level as "$" glyphs;
// anything outside 1-4 is unknown.
func formatPriceLevel(level int) string {
	if level < 1 || level > 4 {
		return "N/A"
	}
	return strings.Repeat("$", level)
}

// buildMessages assembles the full sequence sent to the model: system
// instruction, then the context window oldest first, then the user prompt.
func buildMessages(window []types.ChatMessage, ranked []types.ScoredPlace, userQuery, category string) []types.ChatMessage {
	messages := make([]types.ChatMessage, 0, len(window)+2)
	messages = append(messages, types.ChatMessage{Role: types.RoleSystem, Content: systemPrompt(category)})
	messages = append(messages, window...)
	messages = append(messages, types.ChatMessage{Role: types.RoleUser, Content: buildUserPrompt(ranked, userQuery, category)})
	return messages
}
