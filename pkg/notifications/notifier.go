package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/tribehub/notify/pkg/async"
	"github.com/tribehub/notify/pkg/logger"
)

// Notifier is the single entry point for sending notifications. It resolves
// channels, renders once and delivers to every channel concurrently.
type Notifier struct {
	renderer *Renderer
	prefs    *Preferences
	inApp    *InAppSender
	push     *PushSender
	email    *EmailSender
	emails   EmailLookup
	timeout  time.Duration
	logger   *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger for the Notifier.
func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithLookupTimeout bounds the email address lookup.
func WithLookupTimeout(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewNotifier wires the senders. Any sender may be nil: that channel then
// reports itself as not configured on every call. prefs may be nil, in
// which case every user gets the default channels.
func NewNotifier(renderer *Renderer, prefs *Preferences, inApp *InAppSender, push *PushSender, email *EmailSender, emails EmailLookup, opts ...NotifierOption) (*Notifier, error) {
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	n := &Notifier{
		renderer: renderer,
		prefs:    prefs,
		inApp:    inApp,
		push:     push,
		email:    email,
		emails:   emails,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type notifyOptions struct {
	channels        []Channel
	forced          bool
	skipPreferences bool
}

// NotifyOption changes how channels are chosen for one call.
type NotifyOption func(*notifyOptions)

// WithChannels sends on exactly these channels, bypassing preferences.
func WithChannels(channels ...Channel) NotifyOption {
	return func(o *notifyOptions) {
		o.channels = channels
		o.forced = true
	}
}

// SkipPreferences sends on in-app and push without reading stored
// preferences.
func SkipPreferences() NotifyOption {
	return func(o *notifyOptions) {
		o.skipPreferences = true
	}
}

func (n *Notifier) channelsFor(ctx context.Context, p Payload, opts []NotifyOption) ([]Channel, error) {
	var o notifyOptions
	for _, opt := range opts {
		opt(&o)
	}

	var chs []Channel
	switch {
	case o.forced:
		chs = o.channels
	case o.skipPreferences:
		chs = []Channel{ChannelInApp, ChannelPush}
	default:
		chs = n.prefs.ChannelsFor(ctx, p.Recipient(), p.NotificationType())
	}

	out := make([]Channel, 0, len(chs))
	for _, ch := range chs {
		if !ch.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, ch)
		}
		if !slices.Contains(out, ch) {
			out = append(out, ch)
		}
	}
	return out, nil
}

// Notify delivers p to its recipient. Delivery failures are reported in the
// result, never as an error; the error is reserved for payloads that can't
// be rendered and for invalid options.
func (n *Notifier) Notify(ctx context.Context, p Payload, opts ...NotifyOption) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("%w: nil payload", ErrUnknownType)
	}
	if p.Recipient() == "" {
		return Result{}, fmt.Errorf("%w: %s payload has no user id", ErrInvalidPayload, p.NotificationType())
	}

	channels, err := n.channelsFor(ctx, p, opts)
	if err != nil {
		return Result{}, err
	}
	if len(channels) == 0 {
		n.logger.DebugContext(ctx, "no channels selected, skipping notification",
			logger.UserID(p.Recipient()),
			logger.NotificationType(p.NotificationType()),
		)
		return Result{Success: true, Channels: []ChannelResult{}}, nil
	}

	rendered, err := n.renderer.Render(p)
	if err != nil {
		return Result{}, err
	}

	futures := make([]*async.Future[ChannelResult], len(channels))
	for i, ch := range channels {
		futures[i] = async.Async(ctx, ch, func(ctx context.Context, ch Channel) (ChannelResult, error) {
			return n.deliver(ctx, ch, p, rendered), nil
		})
	}

	results := make([]ChannelResult, len(channels))
	for i, settled := range async.Settle(futures...) {
		results[i] = settled.Value
		if settled.Err != nil {
			results[i] = failed(channels[i], settled.Err.Error())
		}
	}

	res := newResult(results)
	n.log(ctx, p, res)
	return res, nil
}

func (n *Notifier) deliver(ctx context.Context, ch Channel, p Payload, r Rendered) ChannelResult {
	switch ch {
	case ChannelInApp:
		return n.inApp.Send(ctx, p, r.InApp)
	case ChannelPush:
		return n.push.Send(ctx, p.Recipient(), r.Push, n.badgeCount(ctx, p.Recipient()))
	case ChannelEmail:
		if !n.email.configured() {
			return failed(ChannelEmail, msgEmailNotConfigured)
		}
		if r.Email == nil {
			return failed(ChannelEmail, fmt.Sprintf("no email template for %s", p.NotificationType()))
		}
		address, reason := n.lookupEmail(ctx, p.Recipient())
		if reason != "" {
			return failed(ChannelEmail, reason)
		}
		return n.email.Send(ctx, address, r.Email, string(p.NotificationType()))
	}
	return failed(ch, fmt.Sprintf("unsupported channel %q", ch))
}

// badgeCount is the user's unread count at the time the push branch runs.
// The in-app row of the same call may or may not be included.
func (n *Notifier) badgeCount(ctx context.Context, userID string) int {
	if !n.inApp.configured() {
		return 0
	}
	count, err := n.inApp.UnreadCount(ctx, userID)
	if err != nil {
		n.logger.DebugContext(ctx, "unread count unavailable for badge", logger.UserID(userID), logger.Error(err))
		return 0
	}
	return count
}

func (n *Notifier) lookupEmail(ctx context.Context, userID string) (string, string) {
	if n.emails == nil {
		return "", msgNoEmailAddress
	}
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	address, err := n.emails.EmailByUserID(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound), err == nil && strings.TrimSpace(address) == "":
		return "", msgNoEmailAddress
	case err != nil:
		return "", fmt.Sprintf("email lookup failed: %v", err)
	}
	return address, ""
}

func (n *Notifier) log(ctx context.Context, p Payload, res Result) {
	attrs := []slog.Attr{
		logger.UserID(p.Recipient()),
		logger.NotificationType(p.NotificationType()),
		logger.NotificationID(res.NotificationID),
		slog.Bool("success", res.Success),
	}
	level := slog.LevelInfo
	for _, ch := range res.Channels {
		if ch.Success {
			attrs = append(attrs, slog.String(string(ch.Channel), "ok"))
			continue
		}
		level = slog.LevelWarn
		attrs = append(attrs, slog.String(string(ch.Channel), ch.Error))
	}
	n.logger.LogAttrs(ctx, level, "notification dispatched", attrs...)
}

// UserResult is one recipient's outcome in NotifyMultiple.
type UserResult struct {
	UserID string
	Result Result
	Err    error
}

// NotifyMultiple runs an independent Notify for every user concurrently.
// factory builds each user's payload, so recipients can get their own
// locale; a payload addressed to anyone but userID fails that user with
// ErrInvalidPayload. Results are in input order; one user's failure or panic does not
// affect the others.
func (n *Notifier) NotifyMultiple(ctx context.Context, userIDs []string, factory func(userID string) Payload, opts ...NotifyOption) []UserResult {
	settled := async.Map(ctx, userIDs, func(ctx context.Context, userID string) (Result, error) {
		p := factory(userID)
		if p != nil && p.Recipient() != userID {
			return Result{}, fmt.Errorf("%w: payload for %q addressed to %q", ErrInvalidPayload, userID, p.Recipient())
		}
		return n.Notify(ctx, p, opts...)
	})

	out := make([]UserResult, len(userIDs))
	for i, s := range settled {
		out[i] = UserResult{UserID: userIDs[i], Result: s.Value, Err: s.Err}
	}
	return out
}

// SendEmailInvitation emails a rendered payload to a raw address, for
// recipients who have no account. It skips user lookup and preferences.
// Payloads without an email template yield a failed result.
func (n *Notifier) SendEmailInvitation(ctx context.Context, address string, p Payload) (ChannelResult, error) {
	rendered, err := n.renderer.Render(p)
	if err != nil {
		return ChannelResult{}, err
	}
	if rendered.Email == nil {
		return failed(ChannelEmail, fmt.Sprintf("no email template for %s", p.NotificationType())), nil
	}

	res := n.email.Send(ctx, address, rendered.Email, string(p.NotificationType()))
	level := slog.LevelInfo
	if !res.Success {
		level = slog.LevelWarn
	}
	n.logger.LogAttrs(ctx, level, "email invitation dispatched",
		logger.NotificationType(p.NotificationType()),
		logger.MessageID(res.MessageID),
		slog.Bool("success", res.Success),
		slog.String("error", res.Error),
	)
	return res, nil
}

// Inbox exposes the in-app operations used by the UI.
func (n *Notifier) Inbox() *InAppSender {
	return n.inApp
}

// Preferences exposes preference management.
func (n *Notifier) Preferences() *Preferences {
	return n.prefs
}
