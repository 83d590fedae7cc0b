package travel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelcopilot/internal/models"
)

var tripStatuses = map[string]bool{
	models.TripPlanning:  true,
	models.TripBooked:    true,
	models.TripCompleted: true,
	models.TripCancelled: true,
}

// CreateTrip starts a trip plan for one of the agent's customers. New
// trips begin in planning status.
func (s *Service) CreateTrip(ctx context.Context, agentID, customerID int64, title, destination, startDate, endDate string) (*models.Trip, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	title = strings.TrimSpace(title)
	destination = strings.TrimSpace(destination)
	if title == "" || destination == "" {
		return nil, errors.New("title and destination are required")
	}
	if _, err := s.GetCustomer(ctx, agentID, customerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (agent_id, customer_id, title, destination, start_date, end_date, status, total_cost, itinerary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		agentID, customerID, title, destination, startDate, endDate, models.TripPlanning, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("trip id: %w", err)
	}
	return &models.Trip{
		ID:          id,
		AgentID:     agentID,
		CustomerID:  customerID,
		Title:       title,
		Destination: destination,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      models.TripPlanning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ListTrips returns the agent's trips, most recently updated first.
func (s *Service) ListTrips(ctx context.Context, agentID int64) ([]*models.Trip, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, customer_id, title, destination, start_date, end_date, status, total_cost, itinerary, created_at, updated_at
		 FROM trips WHERE agent_id = ? ORDER BY updated_at DESC, id DESC`, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// GetTrip returns one trip, enforcing agent ownership.
func (s *Service) GetTrip(ctx context.Context, agentID, tripID int64) (*models.Trip, error) {
	if agentID <= 0 || tripID <= 0 {
		return nil, errors.New("invalid id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, customer_id, title, destination, start_date, end_date, status, total_cost, itinerary, created_at, updated_at
		 FROM trips WHERE id = ? AND agent_id = ?`, tripID, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query trip: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query trip: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	return scanTrip(rows)
}

// UpdateTripStatus moves the trip to a new lifecycle status.
func (s *Service) UpdateTripStatus(ctx context.Context, agentID, tripID int64, status string) error {
	if !tripStatuses[status] {
		return fmt.Errorf("invalid trip status: %s", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE trips SET status = ?, updated_at = ? WHERE id = ? AND agent_id = ?`,
		status, time.Now().UTC(), tripID, agentID,
	)
	if err != nil {
		return fmt.Errorf("update trip status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddItineraryDay appends a day to the trip itinerary.
func (s *Service) AddItineraryDay(ctx context.Context, agentID, tripID int64, day models.ItineraryDay) (*models.Trip, error) {
	trip, err := s.GetTrip(ctx, agentID, tripID)
	if err != nil {
		return nil, err
	}
	if day.Day <= 0 {
		day.Day = len(trip.Itinerary) + 1
	}
	trip.Itinerary = append(trip.Itinerary, day)

	data, err := json.Marshal(trip.Itinerary)
	if err != nil {
		return nil, fmt.Errorf("encode itinerary: %w", err)
	}
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE trips SET itinerary = ?, updated_at = ? WHERE id = ? AND agent_id = ?`,
		string(data), now, tripID, agentID,
	); err != nil {
		return nil, fmt.Errorf("update itinerary: %w", err)
	}
	trip.UpdatedAt = now
	return trip, nil
}

func scanTrip(rows *sql.Rows) (*models.Trip, error) {
	var (
		t         models.Trip
		itinerary sql.NullString
	)
	if err := rows.Scan(&t.ID, &t.AgentID, &t.CustomerID, &t.Title, &t.Destination,
		&t.StartDate, &t.EndDate, &t.Status, &t.TotalCost, &itinerary, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan trip: %w", err)
	}
	if itinerary.Valid && itinerary.String != "" {
		if err := json.Unmarshal([]byte(itinerary.String), &t.Itinerary); err != nil {
			return nil, fmt.Errorf("decode itinerary: %w", err)
		}
	}
	return &t, nil
}
