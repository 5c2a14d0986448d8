package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrMessageInternal is the body of every 500 response. Internal detail
// stays in the logs.
const ErrMessageInternal = "internal server error"

// JSONError writes a JSON error body with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError writes an error body carrying per-field messages
// under "fields". Used for 400 responses from input validation.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	json.NewEncoder(w).Encode(body)
}
