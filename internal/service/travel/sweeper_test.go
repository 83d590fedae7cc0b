package travel

import (
	"context"
	"testing"
	"time"

	"travelcopilot/internal/models"
)

func TestHoldSweeperReleasesLapsedHolds(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	customer := seedCustomer(t, svc, agent.ID)
	trip := seedTrip(t, svc, agent.ID, customer.ID)

	booking, err := svc.CreateBooking(context.Background(), agent.ID, CreateBookingParams{
		CustomerID: customer.ID, TripID: trip.ID, Type: models.OfferFlight, Amount: 8500, Hold: true,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	past := time.Now().UTC().Add(-time.Minute)
	if _, err := svc.db.Exec(`UPDATE bookings SET hold_expiry = ? WHERE id = ?`, past, booking.ID); err != nil {
		t.Fatalf("backdate hold: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartHoldSweeper(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := svc.GetBooking(context.Background(), agent.ID, booking.ID)
		if err != nil {
			t.Fatalf("get booking: %v", err)
		}
		if got.Status == models.BookingExpired {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("sweeper did not expire the hold")
}
