package models

import "time"

// Conversation groups the copilot exchange for one agent, optionally pinned
// to a customer and trip. At most one conversation per agent is active.
type Conversation struct {
	ID         int64                `json:"id"`
	AgentID    int64                `json:"agent_id"`
	CustomerID *int64               `json:"customer_id,omitempty"`
	TripID     *int64               `json:"trip_id,omitempty"`
	Context    *ConversationContext `json:"context,omitempty"`
	IsActive   bool                 `json:"is_active"`
	Messages   []Message            `json:"messages,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// ConversationContext caches the latest pipeline outcome so follow-up
// actions (like booking from a recommendation) do not re-run the search.
type ConversationContext struct {
	LastIntent        *SearchIntent  `json:"lastIntent,omitempty"`
	LastSearchResults *SearchResults `json:"lastSearchResults,omitempty"`
}
