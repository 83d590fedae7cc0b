package models

import "time"

// Customer belongs to exactly one agent.
type Customer struct {
	ID          int64                `json:"id"`
	AgentID     int64                `json:"agent_id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone"`
	Preferences *CustomerPreferences `json:"preferences,omitempty"`
	PastTrips   []PastTrip           `json:"past_trips,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// CustomerPreferences is stored as a JSON blob on the customer row.
type CustomerPreferences struct {
	Budget            string   `json:"budget,omitempty"`
	SeatPreference    string   `json:"seat_preference,omitempty"`
	MealPreference    string   `json:"meal_preference,omitempty"`
	PreferredAirlines []string `json:"preferred_airlines,omitempty"`
	HotelCategory     string   `json:"hotel_category,omitempty"`
}

// PastTrip is a lightweight history entry kept with the customer profile.
type PastTrip struct {
	Destination string `json:"destination"`
	Year        int    `json:"year"`
}
