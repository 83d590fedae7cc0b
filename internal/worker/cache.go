package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"travelcopilot/internal/models"
	"travelcopilot/internal/redis"
)

const (
	redisInvalidateChannel = "copilot:invalidate"
	redisStateTTL          = 30 * time.Minute
)

type invalidateMessage struct {
	AgentID        int64 `json:"agent_id"`
	ConversationID int64 `json:"conversation_id"`
}

// ConversationCache keeps recently touched conversations (with messages)
// in redis so reads after an append do not hit the database. Writes from
// other processes are handled by pub/sub invalidation.
type ConversationCache struct {
	client *redis.Client
}

func NewConversationCache(client *redis.Client) *ConversationCache {
	return &ConversationCache{client: client}
}

// StartListener subscribes to the invalidation channel and calls handler
// for each message. Used to drop process-local state when another node
// writes the same conversation.
func (c *ConversationCache) StartListener(handler func(agentID, conversationID int64)) {
	if c == nil || c.client == nil || handler == nil {
		return
	}
	raw := c.client.Raw()
	if raw == nil {
		return
	}
	go func() {
		ctx := context.Background()
		pubsub := raw.Subscribe(ctx, redisInvalidateChannel)
		ch := pubsub.Channel()
		for msg := range ch {
			var inv invalidateMessage
			if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
				log.Printf("conversation invalidation decode failed: %v", err)
				continue
			}
			handler(inv.AgentID, inv.ConversationID)
		}
	}()
}

// Store caches the conversation and broadcasts an invalidation so other
// processes drop their stale copy.
func (c *ConversationCache) Store(conv *models.Conversation) {
	if c == nil || c.client == nil || conv == nil || conv.ID <= 0 {
		return
	}
	ctx := context.Background()
	data, err := json.Marshal(conv)
	if err != nil {
		log.Printf("conversation cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, conversationKey(conv.ID), data, redisStateTTL); err != nil {
		log.Printf("conversation cache store failed: %v", err)
		return
	}
	c.publishInvalidation(invalidateMessage{AgentID: conv.AgentID, ConversationID: conv.ID})
}

// Load returns the cached conversation when present and owned by agentID.
func (c *ConversationCache) Load(agentID, conversationID int64) (*models.Conversation, bool) {
	if c == nil || c.client == nil || conversationID <= 0 {
		return nil, false
	}
	ctx := context.Background()
	raw, err := c.client.Get(ctx, conversationKey(conversationID))
	if err != nil {
		if err != redis.ErrCacheMiss {
			log.Printf("conversation cache load failed: %v", err)
		}
		return nil, false
	}
	var conv models.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		log.Printf("conversation cache decode failed: %v", err)
		return nil, false
	}
	if conv.AgentID != agentID {
		return nil, false
	}
	return &conv, true
}

// Invalidate drops the cached conversation.
func (c *ConversationCache) Invalidate(conversationID int64) {
	if c == nil || c.client == nil || conversationID <= 0 {
		return
	}
	if err := c.client.Del(context.Background(), conversationKey(conversationID)); err != nil && err != redis.ErrCacheMiss {
		log.Printf("conversation cache invalidate failed: %v", err)
	}
}

func (c *ConversationCache) publishInvalidation(msg invalidateMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("conversation invalidation marshal failed: %v", err)
		return
	}
	if err := c.client.Publish(context.Background(), redisInvalidateChannel, string(payload)); err != nil {
		log.Printf("conversation publish invalidation failed: %v", err)
	}
}

func conversationKey(id int64) string {
	return fmt.Sprintf("copilot:conversation:%d", id)
}
