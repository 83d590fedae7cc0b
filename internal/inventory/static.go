package inventory

import (
	"context"

	"travelcopilot/internal/models"
)

// StaticSearcher serves the built-in deterministic inventory. Two searches
// with the same intent produce identical results.
type StaticSearcher struct{}

func (StaticSearcher) Search(_ context.Context, intent models.SearchIntent) (*models.SearchResults, error) {
	results := &models.SearchResults{}
	if wantsFlights(intent) {
		results.Flights = staticFlights(originOrDefault(intent), destinationOrDefault(intent))
	}
	if wantsHotels(intent) {
		results.Hotels = staticHotels(cityOrDefault(intent))
	}
	return results, nil
}

func staticFlights(origin, destination string) []models.FlightOffer {
	return []models.FlightOffer{
		{
			Airline:       "Air India",
			FlightNumber:  "AI101",
			Origin:        origin,
			Destination:   destination,
			DepartureTime: "06:00",
			ArrivalTime:   "08:30",
			Price:         8500,
			Stops:         0,
		},
		{
			Airline:       "IndiGo",
			FlightNumber:  "6E202",
			Origin:        origin,
			Destination:   destination,
			DepartureTime: "14:15",
			ArrivalTime:   "16:45",
			Price:         7200,
			Stops:         0,
		},
		{
			Airline:       "SpiceJet",
			FlightNumber:  "SG303",
			Origin:        origin,
			Destination:   destination,
			DepartureTime: "20:30",
			ArrivalTime:   "23:00",
			Price:         6800,
			Stops:         0,
		},
	}
}

func staticHotels(city string) []models.HotelOffer {
	return []models.HotelOffer{
		{Name: "The Leela Palace", City: city, PricePerNight: 12000, Rating: 4.8},
		{Name: "Taj Hotel", City: city, PricePerNight: 9500, Rating: 4.6},
	}
}
