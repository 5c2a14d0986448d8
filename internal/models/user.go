package models

// Operator roles. Viewers can read schedules and history; admins can also
// send, edit configuration, and manage users.
const RoleViewer = "viewer"
const RoleAdmin = "admin"

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
