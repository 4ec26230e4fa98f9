package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tribehub/notify/pkg/async"
	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/webpush"
)

// PushClient delivers one encrypted message to one endpoint.
// *webpush.Client implements it.
type PushClient interface {
	Send(ctx context.Context, sub webpush.Subscription, payload []byte, urgency webpush.Urgency) error
}

// PushMessage is the JSON document the service worker receives.
type PushMessage struct {
	Title            string   `json:"title"`
	Body             string   `json:"body"`
	URL              string   `json:"url,omitempty"`
	Tag              string   `json:"tag,omitempty"`
	Badge            int      `json:"badge"`
	NotificationMode PushMode `json:"notification_mode"`
}

// PushSender fans a message out to every device a user registered.
type PushSender struct {
	client  PushClient
	subs    SubscriptionStore
	timeout time.Duration
	logger  *slog.Logger
}

// PushOption configures a PushSender.
type PushOption func(*PushSender)

// WithPushTimeout bounds each device delivery and store call.
func WithPushTimeout(d time.Duration) PushOption {
	return func(s *PushSender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPushLogger sets the logger.
func WithPushLogger(l *slog.Logger) PushOption {
	return func(s *PushSender) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPushSender creates a sender. A nil client or store means push is not
// configured and every call reports so.
func NewPushSender(client PushClient, subs SubscriptionStore, opts ...PushOption) *PushSender {
	s := &PushSender{
		client:  client,
		subs:    subs,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PushSender) configured() bool {
	return s != nil && s.client != nil && s.subs != nil
}

type deviceOutcome struct {
	id   string
	gone bool
	err  error
}

// Send delivers content to all of userID's devices concurrently. The result
// is a success when at least one device accepted the message or when the
// user has no devices. Subscriptions reported gone are deleted in one batch
// after every delivery has settled.
func (s *PushSender) Send(ctx context.Context, userID string, content PushContent, badge int) ChannelResult {
	if !s.configured() {
		return failed(ChannelPush, msgPushNotConfigured)
	}

	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	subs, err := s.subs.ListSubscriptions(listCtx, userID)
	cancel()
	if err != nil {
		return failed(ChannelPush, fmt.Sprintf("failed to load push subscriptions: %v", err))
	}
	if len(subs) == 0 {
		return succeeded(ChannelPush, "")
	}

	results := async.Map(ctx, subs, func(ctx context.Context, sub PushSubscription) (deviceOutcome, error) {
		return s.deliver(ctx, sub, content, badge), nil
	})

	var (
		delivered int
		gone      []string
		firstErr  error
	)
	for i, res := range results {
		out := res.Value
		if res.Err != nil {
			out = deviceOutcome{id: subs[i].ID, err: res.Err}
		}
		switch {
		case out.err == nil:
			delivered++
		case out.gone:
			gone = append(gone, out.id)
		}
		if out.err != nil && firstErr == nil {
			firstErr = out.err
		}
	}

	if len(gone) > 0 {
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		if err := s.subs.DeleteSubscriptions(delCtx, gone); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired push subscriptions",
				logger.UserID(userID),
				logger.Count("subscriptions", len(gone)),
				logger.Error(err),
			)
		} else {
			s.logger.InfoContext(ctx, "deleted expired push subscriptions",
				logger.UserID(userID),
				logger.Count("subscriptions", len(gone)),
			)
		}
		cancel()
	}

	if delivered == 0 {
		return failed(ChannelPush, fmt.Sprintf("push delivery failed for all %d devices: %v", len(subs), firstErr))
	}
	return succeeded(ChannelPush, "")
}

// SendBadge updates the app badge without showing a notification.
func (s *PushSender) SendBadge(ctx context.Context, userID string, count int) ChannelResult {
	return s.Send(ctx, userID, PushContent{Tag: "badge"}, count)
}

func (s *PushSender) deliver(ctx context.Context, sub PushSubscription, content PushContent, badge int) deviceOutcome {
	mode := sub.Mode
	if !mode.Valid() {
		mode = PushModeSoundAndVibration
	}
	body, err := json.Marshal(PushMessage{
		Title:            content.Title,
		Body:             content.Body,
		URL:              content.URL,
		Tag:              content.Tag,
		Badge:            badge,
		NotificationMode: mode,
	})
	if err != nil {
		return deviceOutcome{id: sub.ID, err: err}
	}

	urgency := webpush.UrgencyNormal
	if content.Title == "" && content.Body == "" {
		urgency = webpush.UrgencyLow
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err = s.client.Send(ctx, webpush.Subscription{
		Endpoint: sub.Endpoint,
		P256dh:   sub.P256dh,
		Auth:     sub.Auth,
	}, body, urgency)

	return deviceOutcome{
		id:   sub.ID,
		gone: errors.Is(err, webpush.ErrSubscriptionGone),
		err:  err,
	}
}
