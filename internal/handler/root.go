package handler

import (
	"net/http"

	"github.com/rishika105/CodeShield-AI/internal/utils"
)

// Root is the liveness blurb.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "Your server is up and running....")
}
