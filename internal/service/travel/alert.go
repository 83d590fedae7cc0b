package travel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"travelcopilot/internal/models"
)

// CreateAlert records a notification for the agent.
func (s *Service) CreateAlert(ctx context.Context, agentID int64, alertType, title, message, priority string, bookingID *int64) (*models.Alert, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	if title == "" {
		return nil, errors.New("alert title is required")
	}
	if priority == "" {
		priority = "normal"
	}

	var bookingRef sql.NullInt64
	if bookingID != nil && *bookingID > 0 {
		bookingRef = sql.NullInt64{Int64: *bookingID, Valid: true}
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (agent_id, type, title, message, priority, booking_id, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		agentID, alertType, title, message, priority, bookingRef, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("alert id: %w", err)
	}

	alert := &models.Alert{
		ID:        id,
		AgentID:   agentID,
		Type:      alertType,
		Title:     title,
		Message:   message,
		Priority:  priority,
		CreatedAt: now,
	}
	if bookingRef.Valid {
		alert.BookingID = bookingID
	}
	return alert, nil
}

// ListAlerts returns the agent's alerts, newest first.
func (s *Service) ListAlerts(ctx context.Context, agentID int64) ([]*models.Alert, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, type, title, message, priority, booking_id, is_read, created_at
		 FROM alerts WHERE agent_id = ? ORDER BY created_at DESC, id DESC`, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var (
			a         models.Alert
			bookingID sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.AgentID, &a.Type, &a.Title, &a.Message, &a.Priority,
			&bookingID, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if bookingID.Valid {
			id := bookingID.Int64
			a.BookingID = &id
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flags one alert as read.
func (s *Service) MarkAlertRead(ctx context.Context, agentID, alertID int64) error {
	if agentID <= 0 || alertID <= 0 {
		return errors.New("invalid id")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET is_read = 1 WHERE id = ? AND agent_id = ?`, alertID, agentID,
	)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UnreadAlertCount returns how many alerts the agent has not read.
func (s *Service) UnreadAlertCount(ctx context.Context, agentID int64) (int64, error) {
	if agentID <= 0 {
		return 0, errors.New("invalid agent id")
	}
	var count int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts WHERE agent_id = ? AND is_read = 0`, agentID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread alerts: %w", err)
	}
	return count, nil
}
