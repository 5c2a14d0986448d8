package models

import "time"

// HistoryEntry represents one sent (or failed) email in the send history.
// The history is a ring: only the most recent entries are kept.
type HistoryEntry struct {
	ID         int       `json:"id"`
	EmailType  string    `json:"email_type"`
	Subject    string    `json:"subject"`
	Recipients []string  `json:"recipients"`
	Status     string    `json:"status"` // sent, error
	SentAt     time.Time `json:"sent_at"`
}

// HistoryLimit is the number of history entries retained.
const HistoryLimit = 100
