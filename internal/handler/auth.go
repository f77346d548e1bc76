package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rishika105/CodeShield-AI/internal/middleware"
	model "github.com/rishika105/CodeShield-AI/internal/models"
	"github.com/rishika105/CodeShield-AI/internal/store"
	"github.com/rishika105/CodeShield-AI/internal/utils"
)

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authPayload is the user shape echoed back with a fresh token.
func authPayload(tok string, u *model.UserProfile) map[string]interface{} {
	return map[string]interface{}{
		"token": tok,
		"user": map[string]interface{}{
			"id":            u.ID,
			"username":      u.Username,
			"email":         u.Email,
			"securityScore": u.SecurityScore,
			"badges":        u.Badges,
		},
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Username) < 3 || len(req.Username) > 30 {
		utils.Error(w, http.StatusBadRequest, "username must be between 3 and 30 characters")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		utils.Error(w, http.StatusBadRequest, "please fill a valid email address")
		return
	}
	if len(req.Password) < 6 {
		utils.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := &model.UserProfile{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Badges:       []string{},
		Role:         model.RoleUser,
	}

	if err := h.store.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			utils.Error(w, http.StatusBadRequest, "user already exists with this email or username")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	tok, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	utils.Created(w, authPayload(tok, user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.store.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tok, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	utils.Success(w, authPayload(tok, user))
}

// Me returns the authenticated caller's full profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
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

	utils.Success(w, map[string]interface{}{"user": user})
}
