package email

import "time"

// Config holds email delivery configuration. The Postmark token is optional
// so that environments without email can still start; senders built from an
// incomplete config report ErrInvalidConfig.
type Config struct {
	PostmarkServerToken  string        `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string        `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string        `env:"SENDER_EMAIL" envDefault:"hello@tribehub.app"`
	SenderName           string        `env:"SENDER_NAME" envDefault:"TribeHub"`
	SupportEmail         string        `env:"SUPPORT_EMAIL" envDefault:"support@tribehub.app"`
	Timeout              time.Duration `env:"EMAIL_TIMEOUT" envDefault:"15s"`
	DevOutputDir         string        `env:"EMAIL_DEV_OUTPUT_DIR"`
}
