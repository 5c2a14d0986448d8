package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/mailprobe/internal/models"
	"github.com/crucial707/mailprobe/internal/repo"
	"github.com/crucial707/mailprobe/internal/secrets"
)

// maskedPassword replaces stored passwords in API responses.
const maskedPassword = "***"

// AccountHandler handles SMTP/IMAP account configurations. Passwords are
// encrypted at rest and never returned to clients.
type AccountHandler struct {
	Repo     *repo.AccountRepo
	Settings *repo.SettingsRepo
	Keychain *secrets.Keychain
}

func maskAccount(a models.Account) models.Account {
	if a.Password != "" {
		a.Password = maskedPassword
	}
	return a
}

// ListAccounts returns all accounts with masked passwords, plus which one
// is active.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Repo.List(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	current, err := h.Settings.CurrentAccount(r.Context())
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	masked := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		masked = append(masked, maskAccount(a))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"accounts": masked,
		"current":  current,
	})
}

// GetAccount returns one account with a masked password.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	a, err := h.Repo.GetByName(r.Context(), name)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if a == nil {
		JSONError(w, "account not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(maskAccount(*a))
}

// UpsertAccount creates or replaces an account. If the password field is
// the mask sentinel or empty, the stored password is kept.
func (h *AccountHandler) UpsertAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var input struct {
		SMTPServer string `json:"smtp_server"`
		SMTPPort   int    `json:"smtp_port"`
		Username   string `json:"username"`
		Password   string `json:"password"`
		UseTLS     *bool  `json:"use_tls"`
		UseSSL     bool   `json:"use_ssl"`
		IMAPServer string `json:"imap_server"`
		IMAPPort   int    `json:"imap_port"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "required"
	}
	if input.Username == "" {
		fields["username"] = "required"
	}
	if input.SMTPServer == "" && input.IMAPServer == "" {
		fields["smtp_server"] = "smtp_server or imap_server required"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	password := input.Password
	if password == "" || password == maskedPassword {
		existing, err := h.Repo.GetByName(r.Context(), name)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if existing != nil {
			password = existing.Password
		} else {
			password = ""
		}
	} else {
		encrypted, err := h.Keychain.Encrypt(password)
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		password = encrypted
	}

	useTLS := true
	if input.UseTLS != nil {
		useTLS = *input.UseTLS
	}
	imapPort := input.IMAPPort
	if imapPort == 0 {
		imapPort = 993
	}

	stored, err := h.Repo.Upsert(r.Context(), models.Account{
		Name:       name,
		SMTPServer: input.SMTPServer,
		SMTPPort:   input.SMTPPort,
		Username:   input.Username,
		Password:   password,
		UseTLS:     useTLS,
		UseSSL:     input.UseSSL,
		IMAPServer: input.IMAPServer,
		IMAPPort:   imapPort,
	})
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(maskAccount(*stored))
}

// ActivateAccount switches the active account used for sending.
func (h *AccountHandler) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	a, err := h.Repo.GetByName(r.Context(), name)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if a == nil {
		JSONError(w, "account not found", http.StatusNotFound)
		return
	}

	if err := h.Settings.SetCurrentAccount(r.Context(), name); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"current": name})
}

// DeleteAccount removes an account configuration.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Repo.Delete(r.Context(), name); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
