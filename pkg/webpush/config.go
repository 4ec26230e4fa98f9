package webpush

import "time"

// Config holds the VAPID identity used to sign push requests.
type Config struct {
	VAPIDPublicKey  string        `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `env:"VAPID_PRIVATE_KEY"`
	Subject         string        `env:"VAPID_SUBJECT" envDefault:"mailto:support@tribehub.app"`
	TTL             time.Duration `env:"PUSH_TTL" envDefault:"24h"`
	Timeout         time.Duration `env:"PUSH_TIMEOUT" envDefault:"15s"`
}

// Configured reports whether both VAPID keys are present.
func (c Config) Configured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
