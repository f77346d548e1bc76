package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rishika105/CodeShield-AI/internal/logger"
	"github.com/rishika105/CodeShield-AI/internal/middleware"
	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/store"
	"github.com/rishika105/CodeShield-AI/internal/utils"
)

const leaderboardLimit = 50

// GetLeaderboard returns the top users by security score, total XP breaking
// ties. Served from the Redis cache when it is warm.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if entries, err := h.cache.GetLeaderboard(r.Context()); err == nil && entries != nil {
			utils.Success(w, entries)
			return
		}
	}

	entries, err := h.store.Leaderboard(r.Context(), leaderboardLimit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not query leaderboard")
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	if h.cache != nil {
		if err := h.cache.SetLeaderboard(r.Context(), entries); err != nil {
			logger.Warning("could not cache leaderboard: %v", err)
		}
	}

	utils.Success(w, entries)
}

// GetUserProfile returns a user by id: the full document for the owner or
// an admin, a trimmed public view for everyone else.
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	if middleware.IsOwnerOrAdmin(r, user.ID) {
		utils.Success(w, user)
		return
	}
	utils.Success(w, user.Public())
}
