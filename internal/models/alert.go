package models

import "time"

// Alert types raised by booking events.
const (
	AlertBookingCreated = "booking_created"
	AlertBookingUpdate  = "booking_update"
	AlertBookingHold    = "booking_hold"
	AlertBookingExpiry  = "booking_expiry"
	AlertPayment        = "payment"
)

type Alert struct {
	ID        int64     `json:"id"`
	AgentID   int64     `json:"agent_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	BookingID *int64    `json:"booking_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
