package travel

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"travelcopilot/internal/models"
)

func TestCustomerPreferencesRoundTrip(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")

	prefs := &models.CustomerPreferences{
		Budget:            "mid-range",
		SeatPreference:    "window",
		PreferredAirlines: []string{"IndiGo"},
	}
	customer, err := svc.CreateCustomer(context.Background(), agent.ID, "Anita Desai", "anita@example.com", "", prefs)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	got, err := svc.GetCustomer(context.Background(), agent.ID, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Preferences == nil || got.Preferences.SeatPreference != "window" {
		t.Fatalf("preferences not stored: %+v", got.Preferences)
	}

	prefs.Budget = "luxury"
	if err := svc.UpdateCustomerPreferences(context.Background(), agent.ID, customer.ID, prefs); err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	got, err = svc.GetCustomer(context.Background(), agent.ID, customer.ID)
	if err != nil || got.Preferences.Budget != "luxury" {
		t.Fatalf("preferences not updated: %+v %v", got.Preferences, err)
	}
}

func TestRecordPastTrip(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	customer := seedCustomer(t, svc, agent.ID)

	err := svc.RecordPastTrip(context.Background(), agent.ID, customer.ID, models.PastTrip{
		Destination: "Kerala",
		Year:        2025,
	})
	if err != nil {
		t.Fatalf("record past trip: %v", err)
	}

	got, err := svc.GetCustomer(context.Background(), agent.ID, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if len(got.PastTrips) != 1 || got.PastTrips[0].Destination != "Kerala" {
		t.Fatalf("past trip not stored: %+v", got.PastTrips)
	}
}

func TestListCustomersScopedToAgent(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	other := seedAgent(t, svc, "vikram")
	seedCustomer(t, svc, agent.ID)
	seedCustomer(t, svc, other.ID)

	customers, err := svc.ListCustomers(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 1 || customers[0].AgentID != agent.ID {
		t.Fatalf("customer list leaked across agents: %+v", customers)
	}
}

func TestTripLifecycle(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	customer := seedCustomer(t, svc, agent.ID)
	trip := seedTrip(t, svc, agent.ID, customer.ID)

	if trip.Status != models.TripPlanning {
		t.Fatalf("new trip should be planning: %+v", trip)
	}

	if err := svc.UpdateTripStatus(context.Background(), agent.ID, trip.ID, models.TripBooked); err != nil {
		t.Fatalf("update trip status: %v", err)
	}
	got, err := svc.GetTrip(context.Background(), agent.ID, trip.ID)
	if err != nil || got.Status != models.TripBooked {
		t.Fatalf("trip status not updated: %+v %v", got, err)
	}

	if err := svc.UpdateTripStatus(context.Background(), agent.ID, trip.ID, "postponed"); err == nil {
		t.Fatalf("expected error for invalid status")
	}
	if err := svc.UpdateTripStatus(context.Background(), agent.ID, 9999, models.TripBooked); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestAddItineraryDay(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	customer := seedCustomer(t, svc, agent.ID)
	trip := seedTrip(t, svc, agent.ID, customer.ID)

	updated, err := svc.AddItineraryDay(context.Background(), agent.ID, trip.ID, models.ItineraryDay{
		Title:      "Arrival and beach walk",
		Activities: []string{"check in", "Baga beach"},
	})
	if err != nil {
		t.Fatalf("add itinerary day: %v", err)
	}
	if len(updated.Itinerary) != 1 || updated.Itinerary[0].Day != 1 {
		t.Fatalf("day number not assigned: %+v", updated.Itinerary)
	}

	updated, err = svc.AddItineraryDay(context.Background(), agent.ID, trip.ID, models.ItineraryDay{Title: "Old Goa"})
	if err != nil {
		t.Fatalf("add itinerary day: %v", err)
	}
	if len(updated.Itinerary) != 2 || updated.Itinerary[1].Day != 2 {
		t.Fatalf("second day not appended: %+v", updated.Itinerary)
	}

	got, err := svc.GetTrip(context.Background(), agent.ID, trip.ID)
	if err != nil || len(got.Itinerary) != 2 {
		t.Fatalf("itinerary not persisted: %+v %v", got, err)
	}
}

func TestAlertsReadFlow(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")

	alert, err := svc.CreateAlert(context.Background(), agent.ID, models.AlertBookingUpdate, "Check fares", "Fares to Goa dropped", "", nil)
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}
	if alert.Priority != "normal" {
		t.Fatalf("priority not defaulted: %q", alert.Priority)
	}

	count, err := svc.UnreadAlertCount(context.Background(), agent.ID)
	if err != nil || count != 1 {
		t.Fatalf("unread count: %d %v", count, err)
	}

	if err := svc.MarkAlertRead(context.Background(), agent.ID, alert.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, err = svc.UnreadAlertCount(context.Background(), agent.ID)
	if err != nil || count != 0 {
		t.Fatalf("unread count after read: %d %v", count, err)
	}

	if err := svc.MarkAlertRead(context.Background(), agent.ID, 9999); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
