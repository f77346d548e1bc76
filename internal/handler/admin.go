package handler

import (
	"net/http"

	"github.com/rishika105/CodeShield-AI/internal/utils"
)

// GetAdminStats serves the aggregate dashboard numbers. Admin only.
func (h *Handler) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "could not compute stats")
		return
	}
	utils.Success(w, stats)
}
