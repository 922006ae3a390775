// Package env reads process settings needed before the config is loaded.
package env

import "os"

const prefix = "AVOLEDGER_"

// Get returns AVOLEDGER_<key>, then the bare key, then fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
