package model

type LeaderboardEntry struct {
	Rank          int      `json:"rank"`
	UserID        string   `json:"userId"`
	Username      string   `json:"username"`
	SecurityScore int      `json:"securityScore"`
	Badges        []string `json:"badges,omitempty"`
	TotalXP       int      `json:"totalXP"`
	MaxStreak     int      `json:"maxStreak"`
}
