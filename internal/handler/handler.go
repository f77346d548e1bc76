package handler

import (
	"context"

	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/token"
)

// Store is the user record store consumed by the handlers.
type Store interface {
	Create(ctx context.Context, u *model.UserProfile) error
	GetByID(ctx context.Context, id string) (*model.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	SaveProgress(ctx context.Context, u *model.UserProfile) error
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Stats(ctx context.Context) (model.AdminStats, error)
}

// Cache is the optional leaderboard cache. A nil Cache disables caching.
type Cache interface {
	GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	SetLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) error
	InvalidateLeaderboard(ctx context.Context) error
}

// Handler carries the collaborators shared by all HTTP handlers.
type Handler struct {
	store  Store
	cache  Cache
	tokens *token.Manager
}

func New(store Store, cache Cache, tokens *token.Manager) *Handler {
	return &Handler{store: store, cache: cache, tokens: tokens}
}
