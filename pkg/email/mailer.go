package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// MaxBatchSize is the largest number of messages accepted by one SendBatch call.
const MaxBatchSize = 100

// EmailSender sends a single transactional email and returns the provider's
// message id.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) (string, error)
}

// BatchSender sends up to MaxBatchSize emails in one provider call.
type BatchSender interface {
	EmailSender
	SendBatch(ctx context.Context, batch []SendEmailParams) ([]BatchResult, error)
}

// SendEmailParams represents one outgoing email. Both bodies are required:
// the plain-text alternative is part of every message we send.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text"`
	ReplyTo  string `json:"reply_to,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// BatchResult is the outcome of one message within a batch.
type BatchResult struct {
	SendTo    string
	MessageID string
	Err       error
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress reports whether s looks like a deliverable address.
func IsValidAddress(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// Validate checks that all required fields are present.
func (p SendEmailParams) Validate() error {
	switch {
	case strings.TrimSpace(p.SendTo) == "":
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	case !IsValidAddress(p.SendTo):
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	case strings.TrimSpace(p.BodyHTML) == "":
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	case strings.TrimSpace(p.BodyText) == "":
		return fmt.Errorf("%w: BodyText is required", ErrInvalidParams)
	case p.ReplyTo != "" && !IsValidAddress(p.ReplyTo):
		return fmt.Errorf("%w: ReplyTo must be a valid email address", ErrInvalidParams)
	}
	return nil
}
