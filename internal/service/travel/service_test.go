package travel

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"travelcopilot/internal/config"
	"travelcopilot/internal/models"
	"travelcopilot/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: ":memory:"},
		},
	}
	db, err := storage.Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return NewService(db)
}

func seedAgent(t *testing.T, svc *Service, username string) *models.Agent {
	t.Helper()
	user, err := svc.RegisterUser(context.Background(), username, "secret")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	agent, err := svc.CreateAgent(context.Background(), user.ID, "Agent "+username, "Horizon Travels", "North", 0)
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func seedCustomer(t *testing.T, svc *Service, agentID int64) *models.Customer {
	t.Helper()
	customer, err := svc.CreateCustomer(context.Background(), agentID, "Rahul Verma", "rahul@example.com", "9876543210", nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}

func seedTrip(t *testing.T, svc *Service, agentID, customerID int64) *models.Trip {
	t.Helper()
	trip, err := svc.CreateTrip(context.Background(), agentID, customerID, "Goa Getaway", "Goa", "2026-09-10", "2026-09-14")
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.RegisterUser(context.Background(), "priya", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID <= 0 || user.PasswordHash == "secret" {
		t.Fatalf("unexpected user: %+v", user)
	}

	got, err := svc.Login(context.Background(), "priya", "secret")
	if err != nil || got.ID != user.ID {
		t.Fatalf("login failed: %+v %v", got, err)
	}
	if _, err := svc.Login(context.Background(), "priya", "wrong"); err == nil {
		t.Fatalf("expected login failure")
	}
	if _, err := svc.RegisterUser(context.Background(), "priya", "again"); err == nil {
		t.Fatalf("expected duplicate username error")
	}
}

func TestDeleteUser(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.RegisterUser(context.Background(), "gone", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), user.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateAgentDefaultsAndCode(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")

	if agent.CommissionRate != DefaultCommissionRate {
		t.Fatalf("commission rate not defaulted: %v", agent.CommissionRate)
	}
	if agent.Code == "" || agent.Code[:3] != "AGT" {
		t.Fatalf("agent code not assigned: %q", agent.Code)
	}

	got, err := svc.AgentByUser(context.Background(), agent.UserID)
	if err != nil || got.ID != agent.ID {
		t.Fatalf("AgentByUser: %+v %v", got, err)
	}
	if _, err := svc.AgentByUser(context.Background(), 9999); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestAgentStats(t *testing.T) {
	svc := newTestService(t)
	agent := seedAgent(t, svc, "priya")
	customer := seedCustomer(t, svc, agent.ID)
	trip := seedTrip(t, svc, agent.ID, customer.ID)

	booking, err := svc.CreateBooking(context.Background(), agent.ID, CreateBookingParams{
		CustomerID: customer.ID,
		TripID:     trip.ID,
		Type:       models.OfferFlight,
		Amount:     8500,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	stats, err := svc.AgentStats(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("AgentStats: %v", err)
	}
	if stats.TotalCustomers != 1 || stats.TotalTrips != 1 || stats.TotalBookings != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.UnreadAlerts == 0 {
		t.Fatalf("booking alert not counted")
	}
	if stats.TotalRevenue != booking.Amount || stats.TotalCommission != booking.Commission {
		t.Fatalf("unexpected revenue: %+v", stats)
	}
}
