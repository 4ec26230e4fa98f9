package jwt

import "time"

// Config holds token verification settings.
type Config struct {
	Secret   string        `env:"JWT_SECRET,required"`
	Audience string        `env:"JWT_AUDIENCE" envDefault:"authenticated"`
	Issuer   string        `env:"JWT_ISSUER"`
	Leeway   time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}
