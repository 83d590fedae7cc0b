package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"travelcopilot/internal/models"
)

// SQLSearcher reads offers from the flights and hotels tables. Seed rows
// carry empty route fields, meaning they match any search; the intent's
// route is filled in on the way out.
type SQLSearcher struct {
	db *sql.DB
}

func NewSQLSearcher(db *sql.DB) *SQLSearcher {
	return &SQLSearcher{db: db}
}

func (s *SQLSearcher) Search(ctx context.Context, intent models.SearchIntent) (*models.SearchResults, error) {
	results := &models.SearchResults{}
	if wantsFlights(intent) {
		flights, err := s.searchFlights(ctx, originOrDefault(intent), destinationOrDefault(intent), intent.BudgetMax)
		if err != nil {
			return nil, err
		}
		results.Flights = flights
	}
	if wantsHotels(intent) {
		hotels, err := s.searchHotels(ctx, cityOrDefault(intent), intent.BudgetMax)
		if err != nil {
			return nil, err
		}
		results.Hotels = hotels
	}
	return results, nil
}

func (s *SQLSearcher) searchFlights(ctx context.Context, origin, destination string, maxPrice int) ([]models.FlightOffer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT airline, flight_number, origin, destination, departure_time, arrival_time, price, stops
		 FROM flights
		 WHERE origin IN ('', ?) AND destination IN ('', ?) AND (? <= 0 OR price <= ?)
		 ORDER BY id`,
		origin, destination, maxPrice, maxPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	var flights []models.FlightOffer
	for rows.Next() {
		var f models.FlightOffer
		if err := rows.Scan(&f.Airline, &f.FlightNumber, &f.Origin, &f.Destination,
			&f.DepartureTime, &f.ArrivalTime, &f.Price, &f.Stops); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		if f.Origin == "" {
			f.Origin = origin
		}
		if f.Destination == "" {
			f.Destination = destination
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (s *SQLSearcher) searchHotels(ctx context.Context, city string, maxPrice int) ([]models.HotelOffer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, city, price_per_night, rating
		 FROM hotels
		 WHERE city IN ('', ?) AND (? <= 0 OR price_per_night <= ?)
		 ORDER BY id`,
		city, maxPrice, maxPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("query hotels: %w", err)
	}
	defer rows.Close()

	var hotels []models.HotelOffer
	for rows.Next() {
		var h models.HotelOffer
		if err := rows.Scan(&h.Name, &h.City, &h.PricePerNight, &h.Rating); err != nil {
			return nil, fmt.Errorf("scan hotel: %w", err)
		}
		if h.City == "" {
			h.City = city
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}
