package webpush

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Subscription is a browser push endpoint with its encryption keys.
type Subscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Validate checks that all fields are present.
func (s Subscription) Validate() error {
	switch {
	case strings.TrimSpace(s.Endpoint) == "":
		return fmt.Errorf("%w: endpoint is required", ErrInvalidSubscription)
	case s.P256dh == "" || s.Auth == "":
		return fmt.Errorf("%w: keys are required", ErrInvalidSubscription)
	}
	return nil
}

// Urgency hints the push service how soon to deliver.
type Urgency string

const (
	UrgencyVeryLow Urgency = "very-low"
	UrgencyLow     Urgency = "low"
	UrgencyNormal  Urgency = "normal"
	UrgencyHigh    Urgency = "high"
)

// Client sends encrypted Web Push messages signed with VAPID.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for push requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// NewClient returns ErrNotConfigured when either VAPID key is missing.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Send delivers payload to one subscription. A 404 or 410 from the push
// service yields ErrSubscriptionGone so the caller can drop the row; any
// other non-2xx status yields ErrDeliveryFailed.
func (c *Client) Send(ctx context.Context, sub Subscription, payload []byte, urgency Urgency) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if urgency == "" {
		urgency = UrgencyNormal
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      c.httpClient,
		Subscriber:      c.cfg.Subject,
		TTL:             int(c.cfg.TTL.Seconds()),
		Urgency:         webpush.Urgency(urgency),
		VAPIDPublicKey:  c.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: c.cfg.VAPIDPrivateKey,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: status %d", ErrSubscriptionGone, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// GenerateKeys returns a fresh VAPID key pair.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}
