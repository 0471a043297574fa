package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Port resolves the listen port, preferring the platform-provided PORT.
func Port(fallback string) string {
	return Get("PORT", fallback)
}
