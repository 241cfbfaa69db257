package utilities

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of key, or def when unset.
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// GetEnvAsInt parses key as an int, falling back to def.
func GetEnvAsInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

// GetEnvAsDuration parses key with time.ParseDuration, falling back to def.
func GetEnvAsDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
