package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// DevSender writes emails to disk instead of sending them. Each message
// produces <stamp>_<tag>.html, .txt and .json files in dir.
type DevSender struct {
	dir string
	seq atomic.Int64
}

// NewDevSender creates a development sender. The directory is created on
// first send.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

type emailMetadata struct {
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	ReplyTo   string `json:"reply_to,omitempty"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := time.Now()
	n := d.seq.Add(1)
	messageID := fmt.Sprintf("dev-%d-%d", now.UnixNano(), n)

	identifier := params.Tag
	if identifier == "" {
		identifier = params.Subject
	}
	base := filepath.Join(d.dir, fmt.Sprintf("%s_%03d_%s", now.Format("2006_01_02_150405"), n, sanitizeFilename(identifier)))

	if err := os.WriteFile(base+".html", []byte(params.BodyHTML), 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(base+".txt", []byte(params.BodyText), 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write text file: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(emailMetadata{
		MessageID: messageID,
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		ReplyTo:   params.ReplyTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(base+".json", meta, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSendEmail, err)
	}
	return messageID, nil
}

// SendBatch writes every message in the batch.
func (d *DevSender) SendBatch(ctx context.Context, batch []SendEmailParams) ([]BatchResult, error) {
	if len(batch) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d messages, max %d", ErrBatchTooLarge, len(batch), MaxBatchSize)
	}
	results := make([]BatchResult, len(batch))
	for i, params := range batch {
		id, err := d.SendEmail(ctx, params)
		results[i] = BatchResult{SendTo: params.SendTo, MessageID: id, Err: err}
	}
	return results, nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename keeps [a-z0-9-_.], maps spaces to underscores and caps
// the length at 100.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
