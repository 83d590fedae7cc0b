package copilot

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"travelcopilot/internal/ai"
	"travelcopilot/internal/models"
)

type fakeCompleter struct {
	fn func(ctx context.Context, req ai.CompletionRequest) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	return f.fn(ctx, req)
}

var errCompleterDown = errors.New("completion service unavailable")

func failingCompleter() *fakeCompleter {
	return &fakeCompleter{fn: func(context.Context, ai.CompletionRequest) (string, error) {
		return "", errCompleterDown
	}}
}

func TestFallbackIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.SearchIntent
	}{
		{
			name: "flight with destination",
			text: "I want a flight to Mumbai",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferFlight,
				Origin:          "Delhi",
				Destination:     "Mumbai",
				Passengers:      1,
			},
		},
		{
			name: "destination keeps punctuation",
			text: "book a flight to Jaipur, please",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferFlight,
				Origin:          "Delhi",
				Destination:     "Jaipur,",
				Passengers:      1,
			},
		},
		{
			name: "flight without destination defaults to Goa",
			text: "can you find a plane for tomorrow",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferFlight,
				Origin:          "Delhi",
				Destination:     "Goa",
				Passengers:      1,
			},
		},
		{
			name: "capitalized To is not a separator",
			text: "Fly To Mumbai",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferFlight,
				Origin:          "Delhi",
				Destination:     "Goa",
				Passengers:      1,
			},
		},
		{
			name: "generic travel phrase counts as flight",
			text: "plan a trip to Kochi",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferFlight,
				Origin:          "Delhi",
				Destination:     "Kochi",
				Passengers:      1,
			},
		},
		{
			name: "hotel without destination defaults to Goa",
			text: "need a hotel room for the weekend",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferHotel,
				Destination:     "Goa",
				Guests:          2,
			},
		},
		{
			name: "hotel with destination",
			text: "find a hotel close to Varkala",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferHotel,
				Destination:     "Varkala",
				Guests:          2,
			},
		},
		{
			name: "flight wins over hotel",
			text: "flight and hotel to Udaipur",
			want: models.SearchIntent{
				HasSearchIntent: true,
				SearchType:      models.OfferFlight,
				Origin:          "Delhi",
				Destination:     "Udaipur",
				Passengers:      1,
			},
		},
		{
			name: "no intent",
			text: "hello",
			want: models.SearchIntent{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackIntent(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("fallbackIntent(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractUsesModelOutput(t *testing.T) {
	completer := &fakeCompleter{fn: func(_ context.Context, req ai.CompletionRequest) (string, error) {
		return "```json\n{\"hasSearchIntent\": true, \"searchType\": \"hotel\", \"destination\": \"Udaipur\", \"guests\": 4, \"budgetMax\": 10000, \"preferences\": [\"lake view\"]}\n```", nil
	}}
	extractor := NewIntentExtractor(completer)

	got := extractor.Extract(context.Background(), "find lake view rooms in Udaipur for four, under 10k a night")
	want := models.SearchIntent{
		HasSearchIntent: true,
		SearchType:      models.OfferHotel,
		Destination:     "Udaipur",
		Guests:          4,
		BudgetMax:       10000,
		Preferences:     []string{"lake view"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract = %+v, want %+v", got, want)
	}
}

func TestExtractAcceptsExtendedCategories(t *testing.T) {
	completer := &fakeCompleter{fn: func(context.Context, ai.CompletionRequest) (string, error) {
		return `{"hasSearchIntent": true, "searchType": "train", "destination": "Mumbai"}`, nil
	}}
	extractor := NewIntentExtractor(completer)

	got := extractor.Extract(context.Background(), "any trains to Mumbai tonight?")
	if !got.HasSearchIntent || got.SearchType != models.SearchTrain || got.Destination != "Mumbai" {
		t.Fatalf("train intent rejected: %+v", got)
	}
}

func TestExtractFallsBackOnCompletionError(t *testing.T) {
	extractor := NewIntentExtractor(failingCompleter())

	got := extractor.Extract(context.Background(), "I want a flight to Mumbai")
	if !got.HasSearchIntent || got.SearchType != models.OfferFlight || got.Destination != "Mumbai" {
		t.Fatalf("expected keyword fallback, got %+v", got)
	}
}

func TestExtractFallsBackOnGarbageOutput(t *testing.T) {
	completer := &fakeCompleter{fn: func(context.Context, ai.CompletionRequest) (string, error) {
		return "sorry, I cannot help with that", nil
	}}
	extractor := NewIntentExtractor(completer)

	got := extractor.Extract(context.Background(), "hello")
	if got.HasSearchIntent {
		t.Fatalf("expected no intent, got %+v", got)
	}
}

func TestExtractFallsBackOnInvalidSearchType(t *testing.T) {
	completer := &fakeCompleter{fn: func(context.Context, ai.CompletionRequest) (string, error) {
		return `{"hasSearchIntent": true, "searchType": "cruise"}`, nil
	}}
	extractor := NewIntentExtractor(completer)

	got := extractor.Extract(context.Background(), "I want a flight to Mumbai")
	if got.SearchType != models.OfferFlight || got.Destination != "Mumbai" {
		t.Fatalf("expected keyword fallback, got %+v", got)
	}
}
