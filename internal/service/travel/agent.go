package travel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelcopilot/internal/models"
)

// DefaultCommissionRate applies when an agent is created without one.
const DefaultCommissionRate = 0.05

// CreateAgent creates the agent profile for a user. Each user gets at
// most one profile.
func (s *Service) CreateAgent(ctx context.Context, userID int64, name, agencyName, territory string, commissionRate float64) (*models.Agent, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("agent name is required")
	}
	if commissionRate <= 0 {
		commissionRate = DefaultCommissionRate
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (user_id, name, agency_name, code, territory, commission_rate, created_at)
		 VALUES (?, ?, ?, '', ?, ?, ?)`,
		userID, name, agencyName, territory, commissionRate, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("agent id: %w", err)
	}

	code := fmt.Sprintf("AGT%04d", id)
	if _, err := s.db.ExecContext(ctx, `UPDATE agents SET code = ? WHERE id = ?`, code, id); err != nil {
		return nil, fmt.Errorf("set agent code: %w", err)
	}

	return &models.Agent{
		ID:             id,
		UserID:         userID,
		Name:           name,
		AgencyName:     agencyName,
		Code:           code,
		Territory:      territory,
		CommissionRate: commissionRate,
		CreatedAt:      now,
	}, nil
}

// AgentByUser returns the agent profile owned by the user.
func (s *Service) AgentByUser(ctx context.Context, userID int64) (*models.Agent, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user id")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, agency_name, code, territory, commission_rate, created_at
		 FROM agents WHERE user_id = ?`, userID,
	)
	return scanAgent(row)
}

// AgentByID returns the agent profile by id.
func (s *Service) AgentByID(ctx context.Context, agentID int64) (*models.Agent, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, agency_name, code, territory, commission_rate, created_at
		 FROM agents WHERE id = ?`, agentID,
	)
	return scanAgent(row)
}

func scanAgent(row *sql.Row) (*models.Agent, error) {
	var a models.Agent
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.AgencyName, &a.Code, &a.Territory, &a.CommissionRate, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("query agent: %w", err)
	}
	return &a, nil
}

// AgentStats aggregates activity counters for the agent dashboard.
func (s *Service) AgentStats(ctx context.Context, agentID int64) (*models.AgentStats, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	stats := &models.AgentStats{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE agent_id = ?`, agentID,
	).Scan(&stats.TotalCustomers); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trips WHERE agent_id = ?`, agentID,
	).Scan(&stats.TotalTrips); err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE agent_id = ?`, agentID,
	).Scan(&stats.TotalBookings); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts WHERE agent_id = ? AND is_read = 0`, agentID,
	).Scan(&stats.UnreadAlerts); err != nil {
		return nil, fmt.Errorf("count unread alerts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(commission), 0)
		 FROM bookings WHERE agent_id = ? AND status = ?`, agentID, models.BookingConfirmed,
	).Scan(&stats.TotalRevenue, &stats.TotalCommission); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	return stats, nil
}
