package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/crucial707/mailprobe/internal/repo"
)

// SettingsHandler handles process-wide settings.
type SettingsHandler struct {
	Repo *repo.SettingsRepo
}

// GetSettings returns the current settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	tz, err := h.Repo.Timezone(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	current, err := h.Repo.CurrentAccount(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"timezone":        tz,
		"current_account": current,
	})
}

// UpdateSettings updates settings. The timezone must be a valid IANA
// name; it takes effect on the scheduler's next tick.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if input.Timezone != "" {
		if _, err := time.LoadLocation(input.Timezone); err != nil {
			JSONValidationError(w, "validation failed",
				map[string]string{"timezone": "must be a valid IANA timezone"}, http.StatusBadRequest)
			return
		}
		if err := h.Repo.SetTimezone(r.Context(), input.Timezone); err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}

	h.GetSettings(w, r)
}
