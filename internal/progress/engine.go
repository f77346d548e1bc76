// Package progress computes the gamification state transitions for quest
// completions: streaks, XP, milestone badges, and the derived security
// score with its tier badges. All functions are pure; persistence belongs
// to the caller.
package progress

import (
	"errors"
	"time"

	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/quests"
)

var (
	ErrQuestNotFound         = errors.New("quest not found")
	ErrInvalidSolution       = errors.New("solution does not satisfy the quest")
	ErrQuestAlreadyCompleted = errors.New("quest already completed")
)

// ConsecutiveWindow is how long after the previous completion a new-day
// completion still extends the streak.
const ConsecutiveWindow = 36 * time.Hour

// FirstQuestBadgeID is the milestone badge for the first completed quest.
const FirstQuestBadgeID = 1

// BadgeRule unlocks a milestone badge when its predicate holds after a
// completion. Evaluated against the already-updated state.
type BadgeRule struct {
	BadgeID int
	Unlocks func(sq model.SecurityQuests) bool
}

// badgeRules is the milestone table evaluated after every completion. New
// milestones are added here without touching the completion flow.
var badgeRules = []BadgeRule{
	{
		BadgeID: FirstQuestBadgeID,
		Unlocks: func(sq model.SecurityQuests) bool {
			return len(sq.CompletedQuests) == 1
		},
	},
}

// CompleteQuest applies a completed-quest event to the progress state and
// returns the updated copy. The input state is never mutated: on any error
// the caller's state is unchanged.
func CompleteQuest(sq model.SecurityQuests, quest quests.Quest, solution string, now time.Time) (model.SecurityQuests, error) {
	if !quest.AcceptsSolution(solution) {
		return sq, ErrInvalidSolution
	}
	if sq.HasCompleted(quest.ID) {
		return sq, ErrQuestAlreadyCompleted
	}

	next := clone(sq)

	lastCompleted := time.Time{}
	if next.LastCompletedDate != nil {
		lastCompleted = *next.LastCompletedDate
	}
	isNewDay := !sameCalendarDay(now, lastCompleted)
	isConsecutiveDay := isNewDay && now.Sub(lastCompleted) <= ConsecutiveWindow

	if isConsecutiveDay {
		next.CurrentStreak++
	} else {
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.MaxStreak {
		next.MaxStreak = next.CurrentStreak
	}

	next.CompletedQuests = append(next.CompletedQuests, model.CompletedQuest{
		QuestID:     quest.ID,
		EarnedXP:    quest.Points,
		CompletedAt: now,
	})
	next.TotalXP += quest.Points
	completedAt := now
	next.LastCompletedDate = &completedAt

	for _, rule := range badgeRules {
		if rule.Unlocks(next) && !next.HasBadge(rule.BadgeID) {
			next.EarnedBadges = append(next.EarnedBadges, model.EarnedBadge{
				BadgeID:  rule.BadgeID,
				EarnedAt: now,
			})
		}
	}

	return next, nil
}

// DeriveSecurityScore maps the completion ratio to a score in [0, 100].
func DeriveSecurityScore(completedCount, totalQuestCount int) int {
	if totalQuestCount <= 0 || completedCount <= 0 {
		return 0
	}
	score := completedCount * 100 / totalQuestCount
	if score > 100 {
		return 100
	}
	return score
}

// BadgeTags derives the cumulative tier badges for a score. Higher tiers
// keep the lower ones so the full tier history stays visible.
func BadgeTags(score int) []string {
	tags := []string{}
	if score >= 20 {
		tags = append(tags, "rookie")
	}
	if score >= 50 {
		tags = append(tags, "guardian")
	}
	if score >= 70 {
		tags = append(tags, "expert")
	}
	if score >= 90 {
		tags = append(tags, "master")
	}
	if score == 100 {
		tags = append(tags, "legend")
	}
	return tags
}

// ApplySecurityScore overrides the stored score, clamped to [0, 100], and
// refreshes the scan bookkeeping and tier badges.
func ApplySecurityScore(u *model.UserProfile, score int, now time.Time) {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	u.SecurityScore = score
	u.ScanCount++
	u.LastScanDate = &now
	u.Badges = BadgeTags(score)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func clone(sq model.SecurityQuests) model.SecurityQuests {
	next := sq
	next.CompletedQuests = append([]model.CompletedQuest(nil), sq.CompletedQuests...)
	next.EarnedBadges = append([]model.EarnedBadge(nil), sq.EarnedBadges...)
	return next
}
