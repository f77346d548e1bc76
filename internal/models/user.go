package model

import (
	"time"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile is the persisted user document: identity, credentials,
// the derived security score with its tier badges, and the quest
// progress sub-state.
type UserProfile struct {
	ID            string         `json:"id"`
	Username      string         `json:"username"`
	Email         string         `json:"email"`
	PasswordHash  string         `json:"-"`
	SecurityScore int            `json:"securityScore"`
	Badges        []string       `json:"badges"`
	Role          string         `json:"role"`
	ScanCount     int            `json:"scanCount"`
	LastScanDate  *time.Time     `json:"lastScanDate,omitempty"`
	Quests        SecurityQuests `json:"securityQuests"`
	Version       int            `json:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// PublicProfile is the view of a user exposed to other authenticated
// users: no email, no scan history, no internal bookkeeping.
type PublicProfile struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	SecurityScore  int      `json:"securityScore"`
	Badges         []string `json:"badges"`
	TotalXP        int      `json:"totalXP"`
	CompletedCount int      `json:"completedCount"`
	MaxStreak      int      `json:"maxStreak"`
}

// Public strips the profile down to what any authenticated caller may see.
func (u *UserProfile) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		Username:       u.Username,
		SecurityScore:  u.SecurityScore,
		Badges:         u.Badges,
		TotalXP:        u.Quests.TotalXP,
		CompletedCount: len(u.Quests.CompletedQuests),
		MaxStreak:      u.Quests.MaxStreak,
	}
}
