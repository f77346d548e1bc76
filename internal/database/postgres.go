package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rishika105/CodeShield-AI/internal/config"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		security_score INT NOT NULL DEFAULT 0,
		badges TEXT[] NOT NULL DEFAULT '{}',
		role TEXT NOT NULL DEFAULT 'user',
		scan_count INT NOT NULL DEFAULT 0,
		last_scan_date TIMESTAMPTZ,
		quests JSONB NOT NULL DEFAULT '{"completedQuests":[],"totalXP":0,"currentStreak":0,"maxStreak":0,"earnedBadges":[]}',
		version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_leaderboard
		ON users (security_score DESC, ((quests->>'totalXP')::int) DESC)`,
}

func ConnectPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err = pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("unable to bootstrap schema: %w", err)
		}
	}

	return pool, nil
}
