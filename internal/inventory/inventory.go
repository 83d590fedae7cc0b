package inventory

import (
	"context"
	"database/sql"

	"travelcopilot/internal/models"
)

// Searcher finds offers for a search intent. Implementations return an
// error only for backend failures; callers treat errors as empty results
// so a broken inventory never blocks the assistant reply.
type Searcher interface {
	Search(ctx context.Context, intent models.SearchIntent) (*models.SearchResults, error)
}

// New selects the inventory backend. "sql" reads the seeded flights and
// hotels tables; anything else gets the built-in static inventory.
func New(source string, db *sql.DB) Searcher {
	if source == "sql" && db != nil {
		return &SQLSearcher{db: db}
	}
	return StaticSearcher{}
}

const (
	defaultOrigin      = "Delhi"
	defaultDestination = "Mumbai"
	defaultCity        = "City"
)

func originOrDefault(intent models.SearchIntent) string {
	if intent.Origin != "" {
		return intent.Origin
	}
	return defaultOrigin
}

func destinationOrDefault(intent models.SearchIntent) string {
	if intent.Destination != "" {
		return intent.Destination
	}
	return defaultDestination
}

func cityOrDefault(intent models.SearchIntent) string {
	if intent.Destination != "" {
		return intent.Destination
	}
	return defaultCity
}

// The category triggers are independent: one search can return both
// flights and hotels when a route is present, whatever the intent's
// declared category.
func wantsFlights(intent models.SearchIntent) bool {
	return intent.SearchType == models.OfferFlight || intent.Origin != "" || intent.Destination != ""
}

func wantsHotels(intent models.SearchIntent) bool {
	return intent.SearchType == models.OfferHotel || intent.Destination != ""
}
