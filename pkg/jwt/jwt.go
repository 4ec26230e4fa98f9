package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256"
)

type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Audience is the aud claim. Issuers send it either as a string or as an
// array of strings; both decode into a slice.
type Audience []string

func (a Audience) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

func (a *Audience) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*a = Audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("%w: aud must be a string or an array of strings", ErrInvalidClaims)
	}
	*a = many
	return nil
}

// StandardClaims mirrors the RFC 7519 registered claims.
type StandardClaims struct {
	ID        string   `json:"jti,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Issuer    string   `json:"iss,omitempty"`
	Audience  Audience `json:"aud,omitempty"`
	ExpiresAt int64    `json:"exp,omitempty"`
	NotBefore int64    `json:"nbf,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
}

// Claims is the access token a signed-in user presents. Subject is the
// user id; Role is "authenticated" for end users and "service_role" for
// backend callers.
type Claims struct {
	StandardClaims
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// Service signs and verifies HS256 tokens.
type Service struct {
	signingKey []byte
	audience   string
	issuer     string
	leeway     time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAudience requires tokens to list aud among their audiences.
func WithAudience(aud string) Option {
	return func(s *Service) {
		s.audience = aud
	}
}

// WithIssuer requires tokens to carry iss.
func WithIssuer(iss string) Option {
	return func(s *Service) {
		s.issuer = iss
	}
}

// WithLeeway tolerates clock skew when checking exp and nbf.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.leeway = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{signingKey: signingKey, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// NewFromConfig builds a service from environment configuration.
func NewFromConfig(cfg Config) (*Service, error) {
	return NewFromString(cfg.Secret,
		WithAudience(cfg.Audience),
		WithIssuer(cfg.Issuer),
		WithLeeway(cfg.Leeway),
	)
}

func (s *Service) Generate(claims any) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	headerJSON, err := json.Marshal(Header{Type: HeaderType, Algorithm: HeaderAlgorithm})
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Parse verifies the signature and registered claims of token and decodes
// its payload into claims.
func (s *Service) Parse(token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	payload := parts[0] + "." + parts[1]
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(s.sign(payload))) != 1 {
		return ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return fmt.Errorf("failed to unmarshal header: %w", err)
	}
	if header.Algorithm != HeaderAlgorithm {
		return ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return fmt.Errorf("failed to decode claims: %w", err)
	}
	var registered StandardClaims
	if err := json.Unmarshal(claimsJSON, &registered); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	if err := s.validate(registered); err != nil {
		return err
	}
	if err := json.Unmarshal(claimsJSON, claims); err != nil {
		return fmt.Errorf("failed to unmarshal claims: %w", err)
	}
	return nil
}

func (s *Service) validate(c StandardClaims) error {
	now := s.now()
	if c.ExpiresAt > 0 && now.After(time.Unix(c.ExpiresAt, 0).Add(s.leeway)) {
		return ErrExpiredToken
	}
	if c.NotBefore > 0 && now.Before(time.Unix(c.NotBefore, 0).Add(-s.leeway)) {
		return ErrInvalidToken
	}
	if s.audience != "" && !slices.Contains(c.Audience, s.audience) {
		return ErrInvalidAudience
	}
	if s.issuer != "" && c.Issuer != s.issuer {
		return ErrInvalidIssuer
	}
	return nil
}

func (s *Service) sign(payload string) string {
	h := hmac.New(sha256.New, s.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
