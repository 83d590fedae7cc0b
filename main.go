package main

import (
	"context"
	"log"
	"os"
	"time"

	"travelcopilot/internal/ai"
	"travelcopilot/internal/api"
	"travelcopilot/internal/auth"
	"travelcopilot/internal/config"
	"travelcopilot/internal/copilot"
	"travelcopilot/internal/inventory"
	"travelcopilot/internal/redis"
	"travelcopilot/internal/service/travel"
	"travelcopilot/internal/storage"
	"travelcopilot/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("COPILOT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbType := os.Getenv("COPILOT_DB")
	if dbType == "" {
		dbType = "sqlite3"
	}
	log.Printf("dbType: %s\n", dbType)
	db, err := storage.Open(dbType, cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := storage.Migrate(db, dbType); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if err := storage.SeedInventory(db); err != nil {
		log.Fatalf("seed inventory: %v", err)
	}

	rdb, err := redis.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("create redis client: %v", err)
	}
	defer rdb.Close()

	travelService := travel.NewService(db)
	authService := auth.NewService(db, 24*time.Hour)

	provider := os.Getenv("COPILOT_PROVIDER")
	if provider == "" {
		provider = "openai"
	}
	completer, err := ai.NewClient(cfg, provider)
	if err != nil {
		log.Fatalf("init completion client: %v", err)
	}

	searcher := inventory.New(cfg.BasicConfig.InventorySource, db)

	engine := worker.NewEngine(time.Duration(cfg.BasicConfig.EngineIdleMinutes) * time.Minute)
	defer engine.Stop()

	cache := worker.NewConversationCache(rdb)
	cache.StartListener(func(agentID, conversationID int64) {
		debugInvalidation(agentID, conversationID)
	})

	pipeline := copilot.NewPipeline(copilot.PipelineConfig{
		Store:          travelService,
		Completer:      completer,
		Searcher:       searcher,
		Scheduler:      engine,
		Cache:          cache,
		RecommendDelay: time.Duration(cfg.BasicConfig.RecommendDelayMs) * time.Millisecond,
		ReplyTimeout:   time.Duration(cfg.BasicConfig.CompletionTimeoutSec) * time.Second,
	})

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	travelService.StartHoldSweeper(sweepCtx, time.Duration(cfg.BasicConfig.HoldSweepMinutes)*time.Minute)
	authService.StartPurgeLoop(sweepCtx, time.Hour)

	handlers := api.NewHandler(travelService, authService, pipeline, cache)

	router := gin.Default()
	handlers.RegisterRoutes(router)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func debugInvalidation(agentID, conversationID int64) {
	if os.Getenv("COPILOT_WORKER_DEBUG") == "1" {
		log.Printf("conversation %d (agent %d) invalidated by peer", conversationID, agentID)
	}
}
