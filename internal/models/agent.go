package models

import "time"

// Agent is a travel agent profile linked to a user account.
type Agent struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	AgencyName     string    `json:"agency_name"`
	Code           string    `json:"code"`
	Territory      string    `json:"territory"`
	CommissionRate float64   `json:"commission_rate"`
	CreatedAt      time.Time `json:"created_at"`
}

// AgentStats aggregates activity counters shown on the agent dashboard.
type AgentStats struct {
	TotalCustomers  int64   `json:"total_customers"`
	TotalTrips      int64   `json:"total_trips"`
	TotalBookings   int64   `json:"total_bookings"`
	UnreadAlerts    int64   `json:"unread_alerts"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalCommission float64 `json:"total_commission"`
}
