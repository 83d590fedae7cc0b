package models

import "time"

// Trip status lifecycle: planning -> booked -> completed, or cancelled.
const (
	TripPlanning  = "planning"
	TripBooked    = "booked"
	TripCompleted = "completed"
	TripCancelled = "cancelled"
)

type Trip struct {
	ID          int64          `json:"id"`
	AgentID     int64          `json:"agent_id"`
	CustomerID  int64          `json:"customer_id"`
	Title       string         `json:"title"`
	Destination string         `json:"destination"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Status      string         `json:"status"`
	TotalCost   float64        `json:"total_cost"`
	Itinerary   []ItineraryDay `json:"itinerary,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ItineraryDay is one planned day, stored as JSON on the trip row.
type ItineraryDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Activities []string `json:"activities,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}
