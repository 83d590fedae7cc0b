package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelcopilot/internal/auth"
	"travelcopilot/internal/copilot"
	"travelcopilot/internal/models"
	"travelcopilot/internal/service/travel"
	"travelcopilot/internal/worker"
)

// MessagePipeline is the copilot entry point the handlers talk to.
type MessagePipeline interface {
	Submit(ctx context.Context, req copilot.SubmitRequest) (int64, error)
}

// Handler wires HTTP routes to the travel service and the copilot
// pipeline.
type Handler struct {
	travel   *travel.Service
	auth     *auth.Service
	pipeline MessagePipeline
	cache    *worker.ConversationCache
}

// NewHandler constructs a Handler instance. cache may be nil when redis
// is not configured.
func NewHandler(service *travel.Service, authService *auth.Service, pipeline MessagePipeline, cache *worker.ConversationCache) *Handler {
	return &Handler{
		travel:   service,
		auth:     authService,
		pipeline: pipeline,
		cache:    cache,
	}
}

// check token userID is match with param userID
func (h *Handler) requirePathUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.SessionUserID(c)
		if !ok || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		paramID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || paramID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if paramID != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user mismatch"})
			return
		}
		c.Next()
	}
}

func (h *Handler) authorizedUserID(c *gin.Context) (int64, bool) {
	userID, ok := auth.SessionUserID(c)
	if !ok || userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return 0, false
	}
	return userID, true
}

// requireAgent resolves the agent profile for the authenticated user.
func (h *Handler) requireAgent(c *gin.Context) (*models.Agent, bool) {
	userID, ok := h.authorizedUserID(c)
	if !ok {
		return nil, false
	}
	agent, err := h.travel.AgentByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "agent profile not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return agent, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/users/register", h.registerUser)
	api.POST("/users/login", h.loginUser)

	userRoutes := api.Group("/users/:id")
	userRoutes.Use(h.auth.Authenticate(), h.requirePathUser(), h.auth.RequireCSRF())
	userRoutes.POST("/logout", h.logoutUser)
	userRoutes.DELETE("", h.deleteUser)

	userRoutes.POST("/agent", h.createAgent)
	userRoutes.GET("/agent", h.getAgent)
	userRoutes.GET("/agent/stats", h.agentStats)

	userRoutes.POST("/customers", h.createCustomer)
	userRoutes.GET("/customers", h.listCustomers)
	userRoutes.GET("/customers/:customer_id", h.getCustomer)
	userRoutes.PUT("/customers/:customer_id/preferences", h.updateCustomerPreferences)

	userRoutes.POST("/trips", h.createTrip)
	userRoutes.GET("/trips", h.listTrips)
	userRoutes.GET("/trips/:trip_id", h.getTrip)
	userRoutes.PATCH("/trips/:trip_id/status", h.updateTripStatus)
	userRoutes.POST("/trips/:trip_id/itinerary", h.addItineraryDay)

	userRoutes.POST("/bookings", h.createBooking)
	userRoutes.GET("/bookings", h.listBookings)
	userRoutes.GET("/bookings/:booking_id", h.getBooking)
	userRoutes.PATCH("/bookings/:booking_id/status", h.updateBookingStatus)
	userRoutes.POST("/bookings/hold", h.holdBooking)
	userRoutes.POST("/bookings/:booking_id/payment", h.processPayment)

	userRoutes.GET("/alerts", h.listAlerts)
	userRoutes.POST("/alerts", h.createAlert)
	userRoutes.PATCH("/alerts/:alert_id/read", h.markAlertRead)
	userRoutes.GET("/alerts/unread-count", h.unreadAlertCount)

	userRoutes.POST("/copilot/message", h.copilotMessage)
	userRoutes.GET("/copilot/conversation", h.activeConversation)
	userRoutes.GET("/copilot/conversations/:conversation_id", h.getConversation)
	userRoutes.POST("/copilot/book", h.bookFromRecommendation)
}

// User create&login interface
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.travel.RegisterUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

func (h *Handler) loginUser(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.travel.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	session, err := h.auth.StartSession(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "start session failed"})
		return
	}
	h.setAuthCookies(c, session)
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
		"auth_token": session.Token,
	})
}

func (h *Handler) logoutUser(c *gin.Context) {
	if _, ok := h.authorizedUserID(c); !ok {
		return
	}
	if token, ok := auth.SessionToken(c); ok {
		_ = h.auth.EndSession(c.Request.Context(), token)
	}
	h.clearAuthCookies(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := h.authorizedUserID(c)
	if !ok {
		return
	}
	if err := h.auth.EndUserSessions(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.travel.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.clearAuthCookies(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) setAuthCookies(c *gin.Context, session *auth.Session) {
	ttl := int(h.auth.TTL().Seconds())
	if ttl <= 0 {
		ttl = 3600
	}
	secure := gin.Mode() == gin.ReleaseMode
	setCookie(c, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.Token,
		MaxAge:   ttl,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	setCookie(c, &http.Cookie{
		Name:     auth.CSRFCookie,
		Value:    session.CSRFToken,
		MaxAge:   ttl,
		Path:     "/",
		Secure:   secure,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	for _, name := range []string{auth.SessionCookie, auth.CSRFCookie} {
		setCookie(c, &http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			Path:     "/",
			Secure:   gin.Mode() == gin.ReleaseMode,
			HttpOnly: name == auth.SessionCookie,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func setCookie(c *gin.Context, ck *http.Cookie) {
	if ck == nil {
		return
	}
	http.SetCookie(c.Writer, ck)
}
