package copilot

import (
	"travelcopilot/internal/models"
)

const recommendationLeadIn = "Here are my recommendations based on your search criteria:"

const maxRecommendations = 3

var (
	flightPros = []string{"Real-time availability", "Competitive pricing", "Instant booking"}
	hotelPros  = []string{"Verified property", "Instant confirmation", "Best rates"}
	hotelCons  = []string{"Limited availability"}
)

// buildRecommendations shortlists the top offers per category. Categories
// without offers produce no block; an empty slice means no recommendation
// message should be sent.
func buildRecommendations(results *models.SearchResults) []models.RecommendationBlock {
	if results.Empty() {
		return nil
	}
	var blocks []models.RecommendationBlock

	if len(results.Flights) > 0 {
		items := make([]models.RecommendedItem, 0, maxRecommendations)
		for i, f := range results.Flights {
			if i >= maxRecommendations {
				break
			}
			flight := f
			cons := []string{"Direct flight"}
			if flight.Stops > 0 {
				cons = []string{"Has stops"}
			}
			items = append(items, models.RecommendedItem{
				Offer: models.Offer{Kind: models.OfferFlight, Flight: &flight},
				Pros:  flightPros,
				Cons:  cons,
			})
		}
		blocks = append(blocks, models.RecommendationBlock{Category: "flights", Items: items})
	}

	if len(results.Hotels) > 0 {
		items := make([]models.RecommendedItem, 0, maxRecommendations)
		for i, h := range results.Hotels {
			if i >= maxRecommendations {
				break
			}
			hotel := h
			items = append(items, models.RecommendedItem{
				Offer: models.Offer{Kind: models.OfferHotel, Hotel: &hotel},
				Pros:  hotelPros,
				Cons:  hotelCons,
			})
		}
		blocks = append(blocks, models.RecommendationBlock{Category: "hotels", Items: items})
	}

	return blocks
}
