package models

// Search categories beyond the two offer kinds. Inventory serves flight
// and hotel offers directly; the remaining categories still trigger
// searches through their origin and destination.
const (
	SearchTrain       = "train"
	SearchBus         = "bus"
	SearchDestination = "destination"
	SearchPackage     = "package"
)

// ValidSearchType reports whether t is a known search category.
func ValidSearchType(t string) bool {
	switch t {
	case OfferFlight, OfferHotel, SearchTrain, SearchBus, SearchDestination, SearchPackage:
		return true
	}
	return false
}

// SearchIntent is the structured reading of a user message. When
// HasSearchIntent is false the other fields are zero. Budget bounds are
// rupees; zero means unbounded.
type SearchIntent struct {
	HasSearchIntent bool     `json:"hasSearchIntent"`
	SearchType      string   `json:"searchType,omitempty"`
	Origin          string   `json:"origin,omitempty"`
	Destination     string   `json:"destination,omitempty"`
	DepartureDate   string   `json:"departureDate,omitempty"`
	CheckIn         string   `json:"checkIn,omitempty"`
	CheckOut        string   `json:"checkOut,omitempty"`
	Passengers      int      `json:"passengers,omitempty"`
	Guests          int      `json:"guests,omitempty"`
	BudgetMin       int      `json:"budgetMin,omitempty"`
	BudgetMax       int      `json:"budgetMax,omitempty"`
	Preferences     []string `json:"preferences,omitempty"`
}
