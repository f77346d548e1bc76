package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rishika105/CodeShield-AI/internal/handler"
	"github.com/rishika105/CodeShield-AI/internal/middleware"
	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/token"
)

// SetupRouter wires all routes and middleware around the handlers.
func SetupRouter(h *handler.Handler, tokens *token.Manager, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Logger)

	// Public
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/auth/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/quests", h.ListQuests).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/quests/{id:[0-9]+}", h.GetQuest).Methods(http.MethodGet)

	// Authenticated
	auth := r.PathPrefix("/api/v1").Subrouter()
	auth.Use(middleware.Auth(tokens))
	auth.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
	auth.HandleFunc("/auth/progress", h.GetProgress).Methods(http.MethodGet)
	auth.HandleFunc("/auth/progress", h.CompleteQuest).Methods(http.MethodPost)
	auth.HandleFunc("/auth/security-score", h.UpdateSecurityScore).Methods(http.MethodPut)
	auth.HandleFunc("/auth/badges", h.UnlockBadge).Methods(http.MethodPost)
	auth.HandleFunc("/users/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	auth.HandleFunc("/users/{id}", h.GetUserProfile).Methods(http.MethodGet)

	// Admin
	admin := auth.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.HandleFunc("/stats", h.GetAdminStats).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}
