package model

import "time"

// CompletedQuest is one entry in the append-only completion ledger.
type CompletedQuest struct {
	QuestID     int       `json:"questId"`
	EarnedXP    int       `json:"earnedXP"`
	CompletedAt time.Time `json:"completedAt"`
}

// EarnedBadge is a milestone badge unlocked by a progress event. This is a
// separate namespace from the score-derived tier badges on UserProfile.
type EarnedBadge struct {
	BadgeID  int       `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

// SecurityQuests is the per-user gamification state mutated by quest
// completions.
type SecurityQuests struct {
	CompletedQuests   []CompletedQuest `json:"completedQuests"`
	TotalXP           int              `json:"totalXP"`
	CurrentStreak     int              `json:"currentStreak"`
	MaxStreak         int              `json:"maxStreak"`
	LastCompletedDate *time.Time       `json:"lastCompletedDate,omitempty"`
	EarnedBadges      []EarnedBadge    `json:"earnedBadges"`
}

// HasCompleted reports whether the quest is already in the ledger.
func (sq *SecurityQuests) HasCompleted(questID int) bool {
	for _, c := range sq.CompletedQuests {
		if c.QuestID == questID {
			return true
		}
	}
	return false
}

// HasBadge reports whether the milestone badge is already unlocked.
func (sq *SecurityQuests) HasBadge(badgeID int) bool {
	for _, b := range sq.EarnedBadges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}
