package copilot

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"travelcopilot/internal/ai"
	"travelcopilot/internal/models"
)

const intentTimeout = 10 * time.Second

// IntentExtractor reads structured search intent out of free-form agent
// messages. The completion service does the heavy lifting; when it fails
// for any reason a keyword heuristic takes over, so extraction never
// returns an error.
type IntentExtractor struct {
	completer ai.Completer
}

func NewIntentExtractor(completer ai.Completer) *IntentExtractor {
	return &IntentExtractor{completer: completer}
}

// Extract returns the search intent for the message.
func (e *IntentExtractor) Extract(ctx context.Context, text string) models.SearchIntent {
	if e.completer != nil {
		if intent, ok := e.extractWithModel(ctx, text); ok {
			return intent
		}
	}
	return fallbackIntent(text)
}

func (e *IntentExtractor) extractWithModel(ctx context.Context, text string) (models.SearchIntent, bool) {
	ctx, cancel := context.WithTimeout(ctx, intentTimeout)
	defer cancel()

	raw, err := e.completer.Complete(ctx, ai.CompletionRequest{
		Prompt:    buildIntentPrompt(text),
		MaxTokens: 200,
	})
	if err != nil {
		return models.SearchIntent{}, false
	}

	payload := extractJSON(raw)
	if payload == "" {
		return models.SearchIntent{}, false
	}
	var intent models.SearchIntent
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		return models.SearchIntent{}, false
	}
	if intent.HasSearchIntent && !models.ValidSearchType(intent.SearchType) {
		return models.SearchIntent{}, false
	}
	return intent, true
}

// fallbackIntent is the deterministic keyword heuristic. Flight words win
// over hotel words; generic travel phrases count as flight searches.
func fallbackIntent(text string) models.SearchIntent {
	lower := strings.ToLower(text)

	isFlight := strings.Contains(lower, "flight") ||
		strings.Contains(lower, "fly") ||
		strings.Contains(lower, "plane")
	isHotel := strings.Contains(lower, "hotel") ||
		strings.Contains(lower, "stay") ||
		strings.Contains(lower, "room")
	isTravel := strings.Contains(lower, "go to") ||
		strings.Contains(lower, "trip to") ||
		strings.Contains(lower, "travel to") ||
		strings.Contains(lower, "visit")

	switch {
	case isFlight || (isTravel && !isHotel):
		return models.SearchIntent{
			HasSearchIntent: true,
			SearchType:      models.OfferFlight,
			Origin:          "Delhi",
			Destination:     fallbackDestination(text),
			Passengers:      1,
		}
	case isHotel:
		return models.SearchIntent{
			HasSearchIntent: true,
			SearchType:      models.OfferHotel,
			Destination:     fallbackDestination(text),
			Guests:          2,
		}
	default:
		return models.SearchIntent{}
	}
}

// fallbackDestination is the first whitespace token following a literal,
// case-sensitive "to", taken as written with punctuation included. "Goa"
// when the message has no such token.
func fallbackDestination(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if w == "to" && i+1 < len(words) {
			return words[i+1]
		}
	}
	return "Goa"
}

// extractJSON pulls the first JSON object out of a completion, tolerating
// markdown code fences around it.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
