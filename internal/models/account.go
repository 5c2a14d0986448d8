package models

import "time"

// Account is a named email account configuration. Passwords are stored
// encrypted by internal/secrets; the API masks them on read.
type Account struct {
	Name       string    `json:"name"`
	SMTPServer string    `json:"smtp_server"`
	SMTPPort   int       `json:"smtp_port"`
	Username   string    `json:"username"`
	Password   string    `json:"password,omitempty"`
	UseTLS     bool      `json:"use_tls"`
	UseSSL     bool      `json:"use_ssl"`
	IMAPServer string    `json:"imap_server,omitempty"`
	IMAPPort   int       `json:"imap_port,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
