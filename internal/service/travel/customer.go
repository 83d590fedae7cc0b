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

// CreateCustomer adds a customer to the agent's book.
func (s *Service) CreateCustomer(ctx context.Context, agentID int64, name, email, phone string, prefs *models.CustomerPreferences) (*models.Customer, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("customer name is required")
	}

	prefsJSON, err := marshalNullable(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (agent_id, name, email, phone, preferences, past_trips, created_at)
		 VALUES (?, ?, ?, ?, ?, NULL, ?)`,
		agentID, name, email, phone, prefsJSON, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("customer id: %w", err)
	}
	return &models.Customer{
		ID:          id,
		AgentID:     agentID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Preferences: prefs,
		CreatedAt:   now,
	}, nil
}

// ListCustomers returns the agent's customers, newest first.
func (s *Service) ListCustomers(ctx context.Context, agentID int64) ([]*models.Customer, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, name, email, phone, preferences, past_trips, created_at
		 FROM customers WHERE agent_id = ? ORDER BY created_at DESC, id DESC`, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// GetCustomer returns one customer, enforcing agent ownership.
func (s *Service) GetCustomer(ctx context.Context, agentID, customerID int64) (*models.Customer, error) {
	if agentID <= 0 || customerID <= 0 {
		return nil, errors.New("invalid id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, name, email, phone, preferences, past_trips, created_at
		 FROM customers WHERE id = ? AND agent_id = ?`, customerID, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query customer: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	return scanCustomer(rows)
}

// UpdateCustomerPreferences replaces the customer's preference profile.
func (s *Service) UpdateCustomerPreferences(ctx context.Context, agentID, customerID int64, prefs *models.CustomerPreferences) error {
	if agentID <= 0 || customerID <= 0 {
		return errors.New("invalid id")
	}
	prefsJSON, err := marshalNullable(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET preferences = ? WHERE id = ? AND agent_id = ?`,
		prefsJSON, customerID, agentID,
	)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordPastTrip appends a history entry to the customer profile.
func (s *Service) RecordPastTrip(ctx context.Context, agentID, customerID int64, trip models.PastTrip) error {
	customer, err := s.GetCustomer(ctx, agentID, customerID)
	if err != nil {
		return err
	}
	past := append(customer.PastTrips, trip)
	data, err := json.Marshal(past)
	if err != nil {
		return fmt.Errorf("encode past trips: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE customers SET past_trips = ? WHERE id = ? AND agent_id = ?`,
		string(data), customerID, agentID,
	); err != nil {
		return fmt.Errorf("update past trips: %w", err)
	}
	return nil
}

func scanCustomer(rows *sql.Rows) (*models.Customer, error) {
	var (
		c         models.Customer
		prefs     sql.NullString
		pastTrips sql.NullString
	)
	if err := rows.Scan(&c.ID, &c.AgentID, &c.Name, &c.Email, &c.Phone, &prefs, &pastTrips, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	if prefs.Valid && prefs.String != "" {
		var p models.CustomerPreferences
		if err := json.Unmarshal([]byte(prefs.String), &p); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
		c.Preferences = &p
	}
	if pastTrips.Valid && pastTrips.String != "" {
		if err := json.Unmarshal([]byte(pastTrips.String), &c.PastTrips); err != nil {
			return nil, fmt.Errorf("decode past trips: %w", err)
		}
	}
	return &c, nil
}

// marshalNullable encodes v as JSON, mapping nil pointers to SQL NULL.
func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
