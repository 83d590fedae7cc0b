package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelcopilot/internal/models"
	"travelcopilot/internal/service/travel"
)

func (h *Handler) createAgent(c *gin.Context) {
	userID, ok := h.authorizedUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name           string  `json:"name"`
		AgencyName     string  `json:"agency_name"`
		Territory      string  `json:"territory"`
		CommissionRate float64 `json:"commission_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, err := h.travel.AgentByUser(c.Request.Context(), userID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "agent profile already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	agent, err := h.travel.CreateAgent(c.Request.Context(), userID, req.Name, req.AgencyName, req.Territory, req.CommissionRate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (h *Handler) getAgent(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *Handler) agentStats(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	stats, err := h.travel.AgentStats(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) createCustomer(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		Name        string                      `json:"name"`
		Email       string                      `json:"email"`
		Phone       string                      `json:"phone"`
		Preferences *models.CustomerPreferences `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	customer, err := h.travel.CreateCustomer(c.Request.Context(), agent.ID, req.Name, req.Email, req.Phone, req.Preferences)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) listCustomers(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	customers, err := h.travel.ListCustomers(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if customers == nil {
		customers = make([]*models.Customer, 0)
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) getCustomer(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	customer, err := h.travel.GetCustomer(c.Request.Context(), agent.ID, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) updateCustomerPreferences(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	customerID, ok := pathID(c, "customer_id")
	if !ok {
		return
	}
	var req models.CustomerPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.travel.UpdateCustomerPreferences(c.Request.Context(), agent.ID, customerID, &req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createTrip(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		CustomerID  int64  `json:"customer_id"`
		Title       string `json:"title"`
		Destination string `json:"destination"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	trip, err := h.travel.CreateTrip(c.Request.Context(), agent.ID, req.CustomerID, req.Title, req.Destination, req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *Handler) listTrips(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	trips, err := h.travel.ListTrips(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if trips == nil {
		trips = make([]*models.Trip, 0)
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *Handler) getTrip(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "trip_id")
	if !ok {
		return
	}
	trip, err := h.travel.GetTrip(c.Request.Context(), agent.ID, tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) updateTripStatus(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "trip_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.travel.UpdateTripStatus(c.Request.Context(), agent.ID, tripID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addItineraryDay(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	tripID, ok := pathID(c, "trip_id")
	if !ok {
		return
	}
	var req models.ItineraryDay
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	trip, err := h.travel.AddItineraryDay(c.Request.Context(), agent.ID, tripID, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) createBooking(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		CustomerID int64                  `json:"customer_id"`
		TripID     int64                  `json:"trip_id"`
		Type       string                 `json:"type"`
		Amount     float64                `json:"amount"`
		Details    *models.BookingDetails `json:"details"`
		Hold       bool                   `json:"hold"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	booking, err := h.travel.CreateBooking(c.Request.Context(), agent.ID, travel.CreateBookingParams{
		CustomerID: req.CustomerID,
		TripID:     req.TripID,
		Type:       req.Type,
		Amount:     req.Amount,
		Details:    req.Details,
		Hold:       req.Hold,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip or customer not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) listBookings(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	bookings, err := h.travel.ListBookings(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if bookings == nil {
		bookings = make([]*models.Booking, 0)
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) getBooking(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}
	booking, err := h.travel.GetBooking(c.Request.Context(), agent.ID, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) updateBookingStatus(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.travel.UpdateBookingStatus(c.Request.Context(), agent.ID, bookingID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) holdBooking(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		Offer      models.Offer `json:"offer"`
		CustomerID *int64       `json:"customer_id"`
		TripID     *int64       `json:"trip_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	booking, err := h.travel.HoldFromOffer(c.Request.Context(), agent.ID, req.Offer, req.CustomerID, req.TripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trip or customer not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) processPayment(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking_id")
	if !ok {
		return
	}
	booking, err := h.travel.ProcessPayment(c.Request.Context(), agent.ID, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) listAlerts(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	alerts, err := h.travel.ListAlerts(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if alerts == nil {
		alerts = make([]*models.Alert, 0)
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) createAlert(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		Message   string `json:"message"`
		Priority  string `json:"priority"`
		BookingID *int64 `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	alert, err := h.travel.CreateAlert(c.Request.Context(), agent.ID, req.Type, req.Title, req.Message, req.Priority, req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (h *Handler) markAlertRead(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	alertID, ok := pathID(c, "alert_id")
	if !ok {
		return
	}
	if err := h.travel.MarkAlertRead(c.Request.Context(), agent.ID, alertID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) unreadAlertCount(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	count, err := h.travel.UnreadAlertCount(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
