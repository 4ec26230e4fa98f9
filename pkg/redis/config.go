package redis

import "time"

// Config describes the Redis connection used to fan inbox events out
// across replicas. An empty ConnectionURL disables Redis and keeps events
// in process.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // ConnectionURL looks like "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`   // RetryInterval is the pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout bounds all attempts together.
	Channel        string        `env:"REDIS_INBOX_CHANNEL" envDefault:"notify:inbox"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
