package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rishika105/CodeShield-AI/internal/quests"
	"github.com/rishika105/CodeShield-AI/internal/utils"
)

// ListQuests serves the static quest catalog.
func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, quests.All())
}

// GetQuest serves a single quest by id.
func (h *Handler) GetQuest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid quest id")
		return
	}
	quest, ok := quests.ByID(id)
	if !ok {
		utils.Error(w, http.StatusNotFound, "quest not found")
		return
	}
	utils.Success(w, quest)
}
