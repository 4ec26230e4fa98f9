package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"
)

// PostmarkClient sends email through Postmark's transactional API.
type PostmarkClient struct {
	client *postmark.Client
	config Config
	from   string
}

// PostmarkOption configures a PostmarkClient.
type PostmarkOption func(*PostmarkClient)

// WithBaseURL points the client at a different API host. Tests use it with
// an httptest server.
func WithBaseURL(url string) PostmarkOption {
	return func(c *PostmarkClient) {
		c.client.BaseURL = url
	}
}

// NewPostmarkClient validates cfg and builds a client. The sender is
// formatted as "Name <address>" with the configured display name.
func NewPostmarkClient(cfg Config, opts ...PostmarkOption) (*PostmarkClient, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if !IsValidAddress(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}
	if cfg.SupportEmail != "" && !IsValidAddress(cfg.SupportEmail) {
		return nil, fmt.Errorf("%w: SupportEmail must be a valid email address", ErrInvalidConfig)
	}

	client := postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	if cfg.Timeout > 0 && client.HTTPClient != nil {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	c := &PostmarkClient{
		client: client,
		config: cfg,
		from:   (&mail.Address{Name: cfg.SenderName, Address: cfg.SenderEmail}).String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustNewPostmarkClient is NewPostmarkClient that panics on invalid config.
func MustNewPostmarkClient(cfg Config, opts ...PostmarkOption) *PostmarkClient {
	client, err := NewPostmarkClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

// SendEmail sends one message. Opens are tracked; links only in HTML.
func (c *PostmarkClient) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	resp, err := c.client.SendEmail(ctx, c.message(params))
	if err != nil {
		return "", errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return resp.MessageID, nil
}

// SendBatch sends up to MaxBatchSize messages in one call. Invalid messages
// are reported individually and are not sent; a transport failure fails the
// whole call.
func (c *PostmarkClient) SendBatch(ctx context.Context, batch []SendEmailParams) ([]BatchResult, error) {
	if len(batch) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d messages, max %d", ErrBatchTooLarge, len(batch), MaxBatchSize)
	}

	results := make([]BatchResult, len(batch))
	messages := make([]postmark.Email, 0, len(batch))
	index := make([]int, 0, len(batch))
	for i, params := range batch {
		results[i].SendTo = params.SendTo
		if err := params.Validate(); err != nil {
			results[i].Err = err
			continue
		}
		messages = append(messages, c.message(params))
		index = append(index, i)
	}
	if len(messages) == 0 {
		return results, nil
	}

	responses, err := c.client.SendEmailBatch(ctx, messages)
	if err != nil {
		return nil, errors.Join(ErrFailedToSendEmail, err)
	}
	for j, i := range index {
		if j >= len(responses) {
			results[i].Err = fmt.Errorf("%w: missing batch response", ErrFailedToSendEmail)
			continue
		}
		resp := responses[j]
		if resp.ErrorCode > 0 {
			results[i].Err = errors.Join(
				ErrFailedToSendEmail,
				fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
			)
			continue
		}
		results[i].MessageID = resp.MessageID
	}
	return results, nil
}

func (c *PostmarkClient) message(params SendEmailParams) postmark.Email {
	replyTo := params.ReplyTo
	if replyTo == "" {
		replyTo = c.config.SupportEmail
	}
	return postmark.Email{
		From:       c.from,
		ReplyTo:    replyTo,
		To:         params.SendTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TextBody:   params.BodyText,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	}
}
