package redis

import "time"

// Config describes the Redis connection. An empty URL disables Redis and
// the server runs on the in-memory cache instead.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether a Redis backend is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
