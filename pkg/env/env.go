package env

import (
	"os"
	"strings"
)

// First returns the first non-blank value among the named environment
// variables, or "" when none is set. Platform variables such as PORT and
// DYNO take part in lookups next to the BANANAMEOW_ ones.
func First(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

// Get returns the value of key or fallback when it is blank.
func Get(key, fallback string) string {
	if val := First(key); val != "" {
		return val
	}
	return fallback
}
