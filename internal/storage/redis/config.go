package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// GuestPlayerTTL expires guest players; registered players never expire
	GuestPlayerTTL time.Duration

	// ResultsPerPlayer caps the stored game history per player
	ResultsPerPlayer int64

	// MessagesPerChat caps the stored history of each conversation
	MessagesPerChat int64
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		GuestPlayerTTL:   24 * time.Hour,
		ResultsPerPlayer: 100,
		MessagesPerChat:  200,
	}
}
