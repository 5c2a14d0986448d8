package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/mailprobe/internal/generators"
	"github.com/crucial707/mailprobe/internal/models"
)

// MailSender is the delivery surface the send endpoints need. Satisfied
// by *sender.Sender.
type MailSender interface {
	Send(ctx context.Context, emailType string, req generators.Request) models.SendResult
	SendTest(ctx context.Context, recipient string) models.SendResult
}

// SendHandler handles immediate sends and SMTP connectivity probes.
type SendHandler struct {
	Sender MailSender
}

// Send delivers emails of the type named in the URL right away.
func (h *SendHandler) Send(w http.ResponseWriter, r *http.Request) {
	emailType := chi.URLParam(r, "type")
	if !validEmailType(emailType) {
		JSONError(w, "unknown email type", http.StatusBadRequest)
		return
	}

	var input struct {
		Count          int      `json:"count"`
		Recipients     []string `json:"recipients"`
		TemplateType   string   `json:"template_type"`
		Subject        string   `json:"subject"`
		Body           string   `json:"body"`
		DisplayName    string   `json:"display_name"`
		AttachmentType string   `json:"attachment_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(input.Recipients) == 0 {
		JSONValidationError(w, "validation failed", map[string]string{"recipients": "required"}, http.StatusBadRequest)
		return
	}

	res := h.Sender.Send(r.Context(), emailType, generators.Request{
		Count:          input.Count,
		Recipients:     input.Recipients,
		TemplateType:   input.TemplateType,
		Subject:        input.Subject,
		Body:           input.Body,
		DisplayName:    input.DisplayName,
		AttachmentType: input.AttachmentType,
	})

	w.Header().Set("Content-Type", "application/json")
	if !res.Success {
		w.WriteHeader(http.StatusBadGateway)
	}
	json.NewEncoder(w).Encode(res)
}

// TestEmail sends a single probe message to verify the SMTP configuration.
func (h *SendHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Recipient == "" {
		JSONValidationError(w, "validation failed", map[string]string{"recipient": "required"}, http.StatusBadRequest)
		return
	}

	res := h.Sender.SendTest(r.Context(), input.Recipient)

	w.Header().Set("Content-Type", "application/json")
	if !res.Success {
		w.WriteHeader(http.StatusBadGateway)
	}
	json.NewEncoder(w).Encode(res)
}
