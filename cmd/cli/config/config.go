package config

import (
	"os"
	"path/filepath"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".mailprobe_token"

// APIURL returns the base URL for the MailProbe API.
// It can be overridden with the MAILPROBE_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("MAILPROBE_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

// SaveToken stores the JWT token in the user's home directory.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// LoadToken reads the locally stored JWT token.
func LoadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RemoveToken deletes the locally stored JWT token, if any.
func RemoveToken() error {
	err := os.Remove(tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
