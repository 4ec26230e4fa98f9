package notifications

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds every network call made while notifying.
const DefaultTimeout = 15 * time.Second

// Config holds the orchestrator settings.
type Config struct {
	BaseURL            string        `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	Timeout            time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"15s"`
	QuietHoursTimezone string        `env:"QUIET_HOURS_TIMEZONE" envDefault:"UTC"`
	FooterPhrases      []string      `env:"EMAIL_FOOTER_PHRASES" envSeparator:"|"`

	DispatchInterval    time.Duration `env:"DISPATCH_INTERVAL" envDefault:"30s"`
	DispatchBatchSize   int           `env:"DISPATCH_BATCH_SIZE" envDefault:"50"`
	DispatchMaxAttempts int           `env:"DISPATCH_MAX_ATTEMPTS" envDefault:"3"`
	DispatchLease       time.Duration `env:"DISPATCH_LEASE" envDefault:"5m"`
}

// Location parses QuietHoursTimezone.
func (c Config) Location() (*time.Location, error) {
	if c.QuietHoursTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.QuietHoursTimezone)
	if err != nil {
		return nil, fmt.Errorf("quiet hours timezone: %w", err)
	}
	return loc, nil
}

// Phrases returns the configured footer phrases, or the built-in ones.
func (c Config) Phrases() []string {
	if len(c.FooterPhrases) > 0 {
		return c.FooterPhrases
	}
	return DefaultFooterPhrases
}
