package worker

import (
	"context"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"travelcopilot/internal/config"
	"travelcopilot/internal/models"
	"travelcopilot/internal/redis"
)

func TestConversationCacheStoreLoadInvalidate(t *testing.T) {
	cache, cleanup := newRedisConversationCache(t)
	defer cleanup()

	conv := &models.Conversation{
		ID:      101,
		AgentID: 77,
		Messages: []models.Message{
			{ID: 1, ConversationID: 101, Position: 0, Role: models.RoleUser, Content: "hello"},
			{ID: 2, ConversationID: 101, Position: 1, Role: models.RoleAssistant, Content: "hi"},
		},
	}
	cache.Store(conv)

	got, ok := cache.Load(77, 101)
	if !ok || got == nil {
		t.Fatalf("expected conversation cached")
	}
	if got.ID != conv.ID || len(got.Messages) != 2 {
		t.Fatalf("cached conversation mismatch: %+v", got)
	}
	if got.Messages[1].Content != "hi" {
		t.Fatalf("message content mismatch: %+v", got.Messages[1])
	}

	// Ownership is enforced on read.
	if _, ok := cache.Load(78, 101); ok {
		t.Fatalf("cache leaked another agent's conversation")
	}

	cache.Invalidate(101)
	if _, ok := cache.Load(77, 101); ok {
		t.Fatalf("expected conversation invalidated")
	}
}

func TestConversationCachePubSub(t *testing.T) {
	cache, cleanup := newRedisConversationCache(t)
	defer cleanup()

	ch := make(chan invalidateMessage, 1)
	cache.StartListener(func(agentID, conversationID int64) {
		ch <- invalidateMessage{AgentID: agentID, ConversationID: conversationID}
	})
	// Give the subscriber a moment to attach before publishing.
	time.Sleep(100 * time.Millisecond)

	cache.Store(&models.Conversation{ID: 6, AgentID: 5})
	select {
	case got := <-ch:
		if got.AgentID != 5 || got.ConversationID != 6 {
			t.Fatalf("unexpected message %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("did not receive pubsub message")
	}
}

func TestConversationCacheNilSafe(t *testing.T) {
	var cache *ConversationCache
	cache.Store(&models.Conversation{ID: 1, AgentID: 1})
	cache.Invalidate(1)
	cache.StartListener(func(int64, int64) {})
	if _, ok := cache.Load(1, 1); ok {
		t.Fatalf("nil cache reported a hit")
	}
}

func newRedisConversationCache(t *testing.T) (*ConversationCache, func()) {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis-backed worker tests")
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("atoi port: %v", err)
	}
	db := 0
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host: host,
			Port: port,
			DB:   db,
		},
	}
	client, err := redis.NewRedisClient(cfg)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	if raw := client.Raw(); raw != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := raw.FlushDB(ctx).Err(); err != nil {
			t.Fatalf("flush db: %v", err)
		}
	}
	cache := NewConversationCache(client)
	cleanup := func() {
		client.Close()
	}
	return cache, cleanup
}
