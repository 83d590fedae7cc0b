package models

// Offer kinds.
const (
	OfferFlight = "flight"
	OfferHotel  = "hotel"
)

// Offer is a tagged union over the offer categories. Exactly one of the
// payload pointers is set, matching Kind.
type Offer struct {
	Kind   string       `json:"kind"`
	Flight *FlightOffer `json:"flight,omitempty"`
	Hotel  *HotelOffer  `json:"hotel,omitempty"`
}

type FlightOffer struct {
	Airline       string `json:"airline"`
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Price         int    `json:"price"`
	Stops         int    `json:"stops"`
}

type HotelOffer struct {
	Name          string  `json:"name"`
	City          string  `json:"city"`
	PricePerNight int     `json:"price_per_night"`
	Rating        float64 `json:"rating"`
}

// SearchResults groups offers by category. Either slice may be empty; an
// all-empty value counts as "no results".
type SearchResults struct {
	Flights []FlightOffer `json:"flights,omitempty"`
	Hotels  []HotelOffer  `json:"hotels,omitempty"`
}

// Empty reports whether no category has offers.
func (r *SearchResults) Empty() bool {
	return r == nil || (len(r.Flights) == 0 && len(r.Hotels) == 0)
}

// RecommendationBlock is a per-category shortlist attached to a
// recommendation message.
type RecommendationBlock struct {
	Category string            `json:"category"`
	Items    []RecommendedItem `json:"items"`
}

type RecommendedItem struct {
	Offer Offer    `json:"offer"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}
