package main

import (
	"net/http"
	"os"

	"github.com/rishika105/CodeShield-AI/internal/api"
	"github.com/rishika105/CodeShield-AI/internal/config"
	"github.com/rishika105/CodeShield-AI/internal/database"
	"github.com/rishika105/CodeShield-AI/internal/handler"
	"github.com/rishika105/CodeShield-AI/internal/logger"
	"github.com/rishika105/CodeShield-AI/internal/store"
	"github.com/rishika105/CodeShield-AI/internal/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Error("Database connection failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	users := store.New(db)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// The leaderboard cache is optional: without Redis every leaderboard
	// request goes straight to Postgres.
	var cache handler.Cache
	if client, err := database.ConnectRedis(cfg); err != nil {
		logger.Warning("Redis unavailable, leaderboard caching disabled: %v", err)
	} else {
		cache = store.NewLeaderboardCache(client)
	}

	h := handler.New(users, cache, tokens)
	router := api.SetupRouter(h, tokens, cfg.AllowedOrigins)

	logger.Success("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
