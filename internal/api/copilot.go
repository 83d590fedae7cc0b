package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelcopilot/internal/copilot"
	"travelcopilot/internal/models"
)

// copilotMessage accepts an agent message and kicks off reply generation
// out of band. The response only confirms the user message was recorded.
func (h *Handler) copilotMessage(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	var req struct {
		ConversationID *int64 `json:"conversation_id"`
		CustomerID     *int64 `json:"customer_id"`
		TripID         *int64 `json:"trip_id"`
		Text           string `json:"text"`
		IsVoice        bool   `json:"is_voice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	conversationID, err := h.pipeline.Submit(c.Request.Context(), copilot.SubmitRequest{
		ConversationID: req.ConversationID,
		AgentID:        agent.ID,
		CustomerID:     req.CustomerID,
		TripID:         req.TripID,
		Text:           req.Text,
		IsVoice:        req.IsVoice,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"conversation_id": conversationID})
}

func (h *Handler) activeConversation(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	conv, err := h.travel.ActiveConversation(c.Request.Context(), agent.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active conversation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *Handler) getConversation(c *gin.Context) {
	agent, ok := h.requireAgent(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversation_id")
	if !ok {
		return
	}
	if cached, hit := h.cache.Load(agent.ID, conversationID); hit {
		c.JSON(http.StatusOK, cached)
		return
	}
	conv, err := h.travel.GetConversation(c.Request.Context(), agent.ID, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conv)
}

// bookFromRecommendation places a hold on an offer picked out of a
// recommendation message.
func (h *Handler) bookFromRecommendation(c *gin.Context) {
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
