package database

import "time"

const (
	defaultMaxRetries = 50
	defaultRetryDelay = 3 * time.Second
)

// PoolConfig holds connection pool settings for Connect.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnIdleTime time.Duration
	// MaxRetries and RetryDelay control the startup connection loop.
	// Zero values fall back to 50 attempts every 3 seconds.
	MaxRetries int
	RetryDelay time.Duration
}

func (c PoolConfig) retries() (int, time.Duration) {
	n, d := c.MaxRetries, c.RetryDelay
	if n <= 0 {
		n = defaultMaxRetries
	}
	if d <= 0 {
		d = defaultRetryDelay
	}
	return n, d
}
