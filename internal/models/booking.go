package models

import "time"

// Booking statuses.
const (
	BookingHeld      = "held"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingExpired   = "expired"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

type Booking struct {
	ID            int64           `json:"id"`
	AgentID       int64           `json:"agent_id"`
	CustomerID    int64           `json:"customer_id"`
	TripID        int64           `json:"trip_id"`
	Type          string          `json:"type"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Amount        float64         `json:"amount"`
	Commission    float64         `json:"commission"`
	Details       *BookingDetails `json:"details,omitempty"`
	HoldExpiry    *time.Time      `json:"hold_expiry,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BookingDetails is the JSON blob stored with a booking: the offer snapshot
// taken at booking time plus passenger data.
type BookingDetails struct {
	Offer      *Offer      `json:"offer,omitempty"`
	Passengers []Passenger `json:"passengers,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

type Passenger struct {
	Name string `json:"name"`
	Age  int    `json:"age,omitempty"`
}
