// Package env covers the few environment reads that happen before the
// typed configuration is loaded, such as picking the initial log level.
package env

import "os"

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
