package config

import (
	"io"
	"time"
)

// Config is a read-only view over the service configuration.
//
// Implementations return the zero value for missing keys or values that
// cannot be converted; callers are expected to register defaults.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond returns the value as a number of seconds.
	GetSecond(key string) time.Duration

	// GetArray returns the value as a string slice. A scalar value is split
	// on commas, so env vars can carry lists as <element1>,<element2>,...
	GetArray(key string) []string
}
