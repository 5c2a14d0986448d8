package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crucial707/mailprobe/internal/models"
	"github.com/crucial707/mailprobe/internal/repo"
)

// HistoryHandler serves the send history ring.
type HistoryHandler struct {
	Repo *repo.HistoryRepo
}

// ListHistory returns recent sends, newest first (query: limit).
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	list, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.HistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}
