package model

import "time"

// AdminStats is the aggregate view served on the admin dashboard route.
type AdminStats struct {
	TotalUsers       int       `json:"totalUsers"`
	TotalCompletions int       `json:"totalCompletions"`
	AvgSecurityScore float64   `json:"avgSecurityScore"`
	GeneratedAt      time.Time `json:"generatedAt"`
}
