package travel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"travelcopilot/internal/models"
)

// HoldDuration is how long a held booking stays reserved before the
// sweeper expires it.
const HoldDuration = 24 * time.Hour

// paymentSucceeds simulates the payment gateway outcome. Swappable so
// tests can force either branch.
var paymentSucceeds = func() bool {
	return rand.Float64() < 0.9
}

// CreateBookingParams carries the caller-supplied booking fields.
type CreateBookingParams struct {
	CustomerID int64
	TripID     int64
	Type       string
	Amount     float64
	Details    *models.BookingDetails
	Hold       bool
}

// CreateBooking books an offer for a trip. Held bookings get a 24 hour
// expiry; commission comes from the agent's configured rate. An alert is
// raised for the agent.
func (s *Service) CreateBooking(ctx context.Context, agentID int64, params CreateBookingParams) (*models.Booking, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	if params.Type != models.OfferFlight && params.Type != models.OfferHotel {
		return nil, fmt.Errorf("invalid booking type: %s", params.Type)
	}
	agent, err := s.AgentByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetTrip(ctx, agentID, params.TripID); err != nil {
		return nil, err
	}
	if _, err := s.GetCustomer(ctx, agentID, params.CustomerID); err != nil {
		return nil, err
	}

	status := models.BookingConfirmed
	var holdExpiry *time.Time
	if params.Hold {
		status = models.BookingHeld
		t := time.Now().UTC().Add(HoldDuration)
		holdExpiry = &t
	}

	booking, err := s.insertBooking(ctx, agent, params.CustomerID, params.TripID, params.Type,
		newReference("TBO"), status, params.Amount, params.Details, holdExpiry)
	if err != nil {
		return nil, err
	}

	if _, err := s.CreateAlert(ctx, agentID, models.AlertBookingCreated, "Booking created",
		fmt.Sprintf("Booking %s created for ₹%.0f", booking.Reference, booking.Amount),
		"normal", &booking.ID); err != nil {
		return nil, err
	}
	return booking, nil
}

// HoldFromOffer reserves an offer straight from a copilot recommendation.
// Without a customer it books against a walk-in profile, and without a
// trip it opens a quick-booking trip shell.
func (s *Service) HoldFromOffer(ctx context.Context, agentID int64, offer models.Offer, customerID, tripID *int64) (*models.Booking, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	agent, err := s.AgentByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	var amount float64
	var destination string
	switch offer.Kind {
	case models.OfferFlight:
		if offer.Flight == nil {
			return nil, errors.New("flight offer payload missing")
		}
		amount = float64(offer.Flight.Price)
		destination = offer.Flight.Destination
	case models.OfferHotel:
		if offer.Hotel == nil {
			return nil, errors.New("hotel offer payload missing")
		}
		amount = float64(offer.Hotel.PricePerNight)
		destination = offer.Hotel.City
	default:
		return nil, fmt.Errorf("invalid offer kind: %s", offer.Kind)
	}
	if destination == "" {
		destination = "TBD"
	}

	var custID int64
	if customerID != nil && *customerID > 0 {
		customer, err := s.GetCustomer(ctx, agentID, *customerID)
		if err != nil {
			return nil, err
		}
		custID = customer.ID
	} else {
		customer, err := s.CreateCustomer(ctx, agentID, "Walk-in Customer", "", "", nil)
		if err != nil {
			return nil, err
		}
		custID = customer.ID
	}

	var trID int64
	if tripID != nil && *tripID > 0 {
		trip, err := s.GetTrip(ctx, agentID, *tripID)
		if err != nil {
			return nil, err
		}
		trID = trip.ID
	} else {
		trip, err := s.CreateTrip(ctx, agentID, custID, "Quick Booking", destination, "", "")
		if err != nil {
			return nil, err
		}
		trID = trip.ID
	}

	expiry := time.Now().UTC().Add(HoldDuration)
	booking, err := s.insertBooking(ctx, agent, custID, trID, offer.Kind,
		newReference("HOLD"), models.BookingHeld, amount,
		&models.BookingDetails{Offer: &offer}, &expiry)
	if err != nil {
		return nil, err
	}

	if _, err := s.CreateAlert(ctx, agentID, models.AlertBookingHold, "Booking on hold",
		fmt.Sprintf("Hold %s expires in 24 hours. Confirm payment to secure the fare.", booking.Reference),
		"high", &booking.ID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) insertBooking(ctx context.Context, agent *models.Agent, customerID, tripID int64,
	bookingType, reference, status string, amount float64, details *models.BookingDetails, holdExpiry *time.Time) (*models.Booking, error) {

	detailsJSON, err := marshalNullable(details)
	if err != nil {
		return nil, fmt.Errorf("encode booking details: %w", err)
	}
	commission := amount * agent.CommissionRate
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (agent_id, customer_id, trip_id, type, reference, status, payment_status, amount, commission, details, hold_expiry, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agent.ID, customerID, tripID, bookingType, reference, status, models.PaymentPending,
		amount, commission, detailsJSON, holdExpiry, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("booking id: %w", err)
	}

	return &models.Booking{
		ID:            id,
		AgentID:       agent.ID,
		CustomerID:    customerID,
		TripID:        tripID,
		Type:          bookingType,
		Reference:     reference,
		Status:        status,
		PaymentStatus: models.PaymentPending,
		Amount:        amount,
		Commission:    commission,
		Details:       details,
		HoldExpiry:    holdExpiry,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ListBookings returns the agent's bookings, newest first.
func (s *Service) ListBookings(ctx context.Context, agentID int64) ([]*models.Booking, error) {
	if agentID <= 0 {
		return nil, errors.New("invalid agent id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, customer_id, trip_id, type, reference, status, payment_status, amount, commission, details, hold_expiry, created_at, updated_at
		 FROM bookings WHERE agent_id = ? ORDER BY created_at DESC, id DESC`, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetBooking returns one booking, enforcing agent ownership.
func (s *Service) GetBooking(ctx context.Context, agentID, bookingID int64) (*models.Booking, error) {
	if agentID <= 0 || bookingID <= 0 {
		return nil, errors.New("invalid id")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, customer_id, trip_id, type, reference, status, payment_status, amount, commission, details, hold_expiry, created_at, updated_at
		 FROM bookings WHERE id = ? AND agent_id = ?`, bookingID, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query booking: %w", err)
		}
		return nil, sql.ErrNoRows
	}
	return scanBooking(rows)
}

// UpdateBookingStatus moves a booking to a new status and raises an alert.
func (s *Service) UpdateBookingStatus(ctx context.Context, agentID, bookingID int64, status string) error {
	switch status {
	case models.BookingHeld, models.BookingConfirmed, models.BookingCancelled, models.BookingExpired:
	default:
		return fmt.Errorf("invalid booking status: %s", status)
	}
	booking, err := s.GetBooking(ctx, agentID, bookingID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND agent_id = ?`,
		status, time.Now().UTC(), bookingID, agentID,
	); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if _, err := s.CreateAlert(ctx, agentID, models.AlertBookingUpdate, "Booking updated",
		fmt.Sprintf("Booking %s moved to %s", booking.Reference, status),
		"normal", &bookingID); err != nil {
		return err
	}
	return nil
}

// ProcessPayment runs the simulated payment flow for a pending booking.
// Success confirms the booking; failure marks the payment failed and
// leaves the booking status untouched.
func (s *Service) ProcessPayment(ctx context.Context, agentID, bookingID int64) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, agentID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, errors.New("booking already paid")
	}
	if booking.Status == models.BookingCancelled || booking.Status == models.BookingExpired {
		return nil, fmt.Errorf("cannot pay a %s booking", booking.Status)
	}

	now := time.Now().UTC()
	if paymentSucceeds() {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE bookings SET payment_status = ?, status = ?, hold_expiry = NULL, updated_at = ? WHERE id = ?`,
			models.PaymentPaid, models.BookingConfirmed, now, bookingID,
		); err != nil {
			return nil, fmt.Errorf("record payment: %w", err)
		}
		booking.PaymentStatus = models.PaymentPaid
		booking.Status = models.BookingConfirmed
		booking.HoldExpiry = nil
		if _, err := s.CreateAlert(ctx, agentID, models.AlertPayment, "Payment received",
			fmt.Sprintf("Payment of ₹%.0f received for %s", booking.Amount, booking.Reference),
			"normal", &bookingID); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE bookings SET payment_status = ?, updated_at = ? WHERE id = ?`,
			models.PaymentFailed, now, bookingID,
		); err != nil {
			return nil, fmt.Errorf("record payment failure: %w", err)
		}
		booking.PaymentStatus = models.PaymentFailed
		if _, err := s.CreateAlert(ctx, agentID, models.AlertPayment, "Payment failed",
			fmt.Sprintf("Payment for %s failed. Ask the customer to retry.", booking.Reference),
			"high", &bookingID); err != nil {
			return nil, err
		}
	}
	booking.UpdatedAt = now
	return booking, nil
}

// ExpireHolds cancels held bookings whose hold has lapsed and raises an
// expiry alert for each. Returns how many were expired.
func (s *Service) ExpireHolds(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, reference FROM bookings WHERE status = ? AND hold_expiry IS NOT NULL AND hold_expiry <= ?`,
		models.BookingHeld, now,
	)
	if err != nil {
		return 0, fmt.Errorf("query expired holds: %w", err)
	}
	type expired struct {
		id, agentID int64
		reference   string
	}
	var lapsed []expired
	for rows.Next() {
		var e expired
		if err := rows.Scan(&e.id, &e.agentID, &e.reference); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan expired hold: %w", err)
		}
		lapsed = append(lapsed, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate expired holds: %w", err)
	}

	for _, e := range lapsed {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			models.BookingExpired, now, e.id, models.BookingHeld,
		); err != nil {
			return 0, fmt.Errorf("expire booking %d: %w", e.id, err)
		}
		if _, err := s.CreateAlert(ctx, e.agentID, models.AlertBookingExpiry, "Hold expired",
			fmt.Sprintf("Hold %s expired and was released", e.reference),
			"high", &e.id); err != nil {
			return 0, err
		}
	}
	return len(lapsed), nil
}

func scanBooking(rows *sql.Rows) (*models.Booking, error) {
	var (
		b          models.Booking
		details    sql.NullString
		holdExpiry sql.NullTime
	)
	if err := rows.Scan(&b.ID, &b.AgentID, &b.CustomerID, &b.TripID, &b.Type, &b.Reference,
		&b.Status, &b.PaymentStatus, &b.Amount, &b.Commission, &details, &holdExpiry,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	if details.Valid && details.String != "" {
		var d models.BookingDetails
		if err := json.Unmarshal([]byte(details.String), &d); err != nil {
			return nil, fmt.Errorf("decode booking details: %w", err)
		}
		b.Details = &d
	}
	if holdExpiry.Valid {
		t := holdExpiry.Time
		b.HoldExpiry = &t
	}
	return &b, nil
}

func newReference(prefix string) string {
	return fmt.Sprintf("%s%d%04d", prefix, time.Now().UnixMilli(), rand.Intn(10000))
}
