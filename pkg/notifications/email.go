package notifications

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/tribehub/notify/pkg/email"
)

// DefaultFooterPhrases are the short lines one of which closes every email.
var DefaultFooterPhrases = []string{
	"Made for people who like to show up.",
	"Go out. Meet people. Repeat.",
	"Good things happen when you say yes.",
	"See you at the next one.",
	"Fewer screens, more scenes.",
}

// EmailMessage is one message of a batch send.
type EmailMessage struct {
	To      string
	Content *EmailContent
	Tag     string
}

// BatchResult aggregates a batch send. Errors holds the first error of each
// batch that had failures.
type BatchResult struct {
	Sent   int
	Failed int
	Errors []string
}

// EmailSender sends rendered notifications through a transactional email
// provider.
type EmailSender struct {
	sender  email.BatchSender
	phrases []string
	pick    func(n int) int
	timeout time.Duration
}

// EmailOption configures an EmailSender.
type EmailOption func(*EmailSender)

// WithFooterPhrases replaces the footer phrase list. An empty list disables
// the footer line.
func WithFooterPhrases(phrases ...string) EmailOption {
	return func(s *EmailSender) {
		s.phrases = phrases
	}
}

// WithEmailTimeout bounds each provider call.
func WithEmailTimeout(d time.Duration) EmailOption {
	return func(s *EmailSender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewEmailSender creates a sender. A nil provider means email is not
// configured and every call reports so.
func NewEmailSender(sender email.BatchSender, opts ...EmailOption) *EmailSender {
	s := &EmailSender{
		sender:  sender,
		phrases: DefaultFooterPhrases,
		pick:    rand.IntN,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EmailSender) configured() bool {
	return s != nil && s.sender != nil
}

// Send delivers content to address. MessageID is the provider's id.
func (s *EmailSender) Send(ctx context.Context, address string, content *EmailContent, tag string) ChannelResult {
	if !s.configured() {
		return failed(ChannelEmail, msgEmailNotConfigured)
	}
	if content == nil {
		return failed(ChannelEmail, "no email content")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	id, err := s.sender.SendEmail(ctx, s.params(address, content, tag))
	if err != nil {
		return failed(ChannelEmail, err.Error())
	}
	return succeeded(ChannelEmail, id)
}

// SendBatch sends messages in chunks of email.MaxBatchSize. A chunk that
// fails as a whole counts each of its messages as failed.
func (s *EmailSender) SendBatch(ctx context.Context, messages []EmailMessage) BatchResult {
	var out BatchResult
	if !s.configured() {
		out.Failed = len(messages)
		if len(messages) > 0 {
			out.Errors = []string{msgEmailNotConfigured}
		}
		return out
	}

	for start := 0; start < len(messages); start += email.MaxBatchSize {
		chunk := messages[start:min(start+email.MaxBatchSize, len(messages))]
		params := make([]email.SendEmailParams, len(chunk))
		for i, m := range chunk {
			if m.Content == nil {
				params[i] = email.SendEmailParams{SendTo: m.To, Tag: m.Tag}
				continue
			}
			params[i] = s.params(m.To, m.Content, m.Tag)
		}

		batchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		results, err := s.sender.SendBatch(batchCtx, params)
		cancel()
		if err != nil {
			out.Failed += len(chunk)
			out.Errors = append(out.Errors, err.Error())
			continue
		}

		var firstErr string
		for _, r := range results {
			if r.Err != nil {
				out.Failed++
				if firstErr == "" {
					firstErr = r.Err.Error()
				}
				continue
			}
			out.Sent++
		}
		if firstErr != "" {
			out.Errors = append(out.Errors, firstErr)
		}
	}
	return out
}

func (s *EmailSender) params(address string, content *EmailContent, tag string) email.SendEmailParams {
	html, text := content.HTML, content.Text
	if phrase := s.footerPhrase(); phrase != "" {
		text = text + "\n\n" + phrase
		line := `<p style="margin:16px 0 0;font-style:italic;">` + templ.EscapeString(phrase) + `</p>`
		if i := strings.LastIndex(html, "</body>"); i >= 0 {
			html = html[:i] + line + html[i:]
		} else {
			html += line
		}
	}
	return email.SendEmailParams{
		SendTo:   address,
		Subject:  content.Subject,
		BodyHTML: html,
		BodyText: text,
		Tag:      tag,
	}
}

func (s *EmailSender) footerPhrase() string {
	if len(s.phrases) == 0 {
		return ""
	}
	return s.phrases[s.pick(len(s.phrases))]
}

