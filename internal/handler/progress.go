package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rishika105/CodeShield-AI/internal/logger"
	"github.com/rishika105/CodeShield-AI/internal/middleware"
	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/progress"
	"github.com/rishika105/CodeShield-AI/internal/quests"
	"github.com/rishika105/CodeShield-AI/internal/store"
	"github.com/rishika105/CodeShield-AI/internal/utils"
)

// saveAttempts bounds the read-compute-write retries when a concurrent
// update invalidates the version we read.
const saveAttempts = 3

type CompleteQuestRequest struct {
	QuestID  int    `json:"questId"`
	Solution string `json:"solution"`
}

type UpdateScoreRequest struct {
	Score int `json:"score"`
}

type UnlockBadgeRequest struct {
	BadgeID int `json:"badgeId"`
}

// GetProgress returns the caller's quest progress sub-state.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.Identity(r)

	user, err := h.store.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "could not load user")
		return
	}

	utils.Success(w, map[string]interface{}{"securityQuests": user.Quests})
}

// CompleteQuest records a quest completion: validates the submitted
// solution, runs the progress engine, rederives the security score, and
// persists the whole update under the optimistic version guard.
func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.Identity(r)

	var req CompleteQuestRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	quest, ok := quests.ByID(req.QuestID)
	if !ok {
		utils.Error(w, http.StatusNotFound, progress.ErrQuestNotFound.Error())
		return
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		user, err := h.store.GetByID(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusNotFound, "user not found")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "could not load user")
			return
		}

		next, err := progress.CompleteQuest(user.Quests, quest, req.Solution, time.Now())
		if err != nil {
			switch {
			case errors.Is(err, progress.ErrInvalidSolution):
				utils.Error(w, http.StatusBadRequest, "solution does not fix the vulnerability")
			case errors.Is(err, progress.ErrQuestAlreadyCompleted):
				utils.Error(w, http.StatusBadRequest, "quest already completed")
			default:
				utils.Error(w, http.StatusInternalServerError, "could not complete quest")
			}
			return
		}

		user.Quests = next
		score := progress.DeriveSecurityScore(len(next.CompletedQuests), quests.Count())
		user.SecurityScore = score
		user.Badges = progress.BadgeTags(score)

		if err := h.store.SaveProgress(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			utils.Error(w, http.StatusInternalServerError, "could not save progress")
			return
		}

		h.invalidateLeaderboard(r)
		utils.Success(w, map[string]interface{}{
			"securityQuests": user.Quests,
			"securityScore":  user.SecurityScore,
			"badges":         user.Badges,
		})
		return
	}

	utils.Error(w, http.StatusConflict, "progress was updated concurrently, please retry")
}

// UpdateSecurityScore overrides the stored score (clamped to 0..100) and
// refreshes scan bookkeeping and tier badges.
func (h *Handler) UpdateSecurityScore(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.Identity(r)

	var req UpdateScoreRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		user, err := h.store.GetByID(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusNotFound, "user not found")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "could not load user")
			return
		}

		progress.ApplySecurityScore(user, req.Score, time.Now())

		if err := h.store.SaveProgress(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			utils.Error(w, http.StatusInternalServerError, "could not save score")
			return
		}

		h.invalidateLeaderboard(r)
		utils.Success(w, map[string]interface{}{
			"securityScore": user.SecurityScore,
			"badges":        user.Badges,
		})
		return
	}

	utils.Error(w, http.StatusConflict, "score was updated concurrently, please retry")
}

// UnlockBadge adds a milestone badge directly. Unlocking an already-earned
// badge is a no-op, keeping the badge set free of duplicates.
func (h *Handler) UnlockBadge(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.Identity(r)

	var req UnlockBadgeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BadgeID <= 0 {
		utils.Error(w, http.StatusBadRequest, "badgeId must be positive")
		return
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		user, err := h.store.GetByID(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.Error(w, http.StatusNotFound, "user not found")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "could not load user")
			return
		}

		if user.Quests.HasBadge(req.BadgeID) {
			utils.Success(w, map[string]interface{}{"earnedBadges": user.Quests.EarnedBadges})
			return
		}

		user.Quests.EarnedBadges = append(user.Quests.EarnedBadges, model.EarnedBadge{
			BadgeID:  req.BadgeID,
			EarnedAt: time.Now(),
		})

		if err := h.store.SaveProgress(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			utils.Error(w, http.StatusInternalServerError, "could not save badge")
			return
		}

		utils.Success(w, map[string]interface{}{"earnedBadges": user.Quests.EarnedBadges})
		return
	}

	utils.Error(w, http.StatusConflict, "badges were updated concurrently, please retry")
}

func (h *Handler) invalidateLeaderboard(r *http.Request) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateLeaderboard(r.Context()); err != nil {
		logger.Warning("could not invalidate leaderboard cache: %v", err)
	}
}
