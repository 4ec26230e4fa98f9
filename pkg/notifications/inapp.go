package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InboxEventKind says what changed in a user's inbox.
type InboxEventKind string

const (
	InboxCreated InboxEventKind = "created"
	InboxRead    InboxEventKind = "read"
	InboxReadAll InboxEventKind = "read_all"
)

// InboxEvent reports a change to one user's inbox. Record is set for
// InboxCreated; NotificationID for InboxCreated and InboxRead.
type InboxEvent struct {
	Kind           InboxEventKind `json:"kind"`
	UserID         string         `json:"user_id"`
	NotificationID string         `json:"notification_id,omitempty"`
	Record         *InboxRecord   `json:"record,omitempty"`
}

// InboxObserver is told about every successful inbox change. It runs
// synchronously after the store call and must not block.
type InboxObserver func(ctx context.Context, ev InboxEvent)

// InAppSender writes notifications to the persisted inbox.
type InAppSender struct {
	inbox     Inbox
	now       func() time.Time
	timeout   time.Duration
	observers []InboxObserver
}

// InAppOption configures an InAppSender.
type InAppOption func(*InAppSender)

// WithInAppTimeout bounds each inbox call.
func WithInAppTimeout(d time.Duration) InAppOption {
	return func(s *InAppSender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithInAppClock replaces time.Now for record timestamps.
func WithInAppClock(now func() time.Time) InAppOption {
	return func(s *InAppSender) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInboxObserver registers o for inbox changes made through the sender.
func WithInboxObserver(o InboxObserver) InAppOption {
	return func(s *InAppSender) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewInAppSender creates a sender. With a nil inbox every call reports the
// channel as not configured.
func NewInAppSender(inbox Inbox, opts ...InAppOption) *InAppSender {
	s := &InAppSender{inbox: inbox, now: time.Now, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InAppSender) configured() bool {
	return s != nil && s.inbox != nil
}

// Send inserts one inbox row for the payload's recipient. The encoded
// payload is kept in the metadata column for traceability. MessageID is
// the new row id.
func (s *InAppSender) Send(ctx context.Context, p Payload, content InAppContent) ChannelResult {
	if !s.configured() {
		return failed(ChannelInApp, msgInAppNotConfigured)
	}

	encoded, err := EncodePayload(p)
	if err != nil {
		return failed(ChannelInApp, err.Error())
	}
	metadata, err := json.Marshal(map[string]json.RawMessage{"payload": encoded})
	if err != nil {
		return failed(ChannelInApp, err.Error())
	}

	now := s.now().UTC()
	rec := InboxRecord{
		ID:              uuid.NewString(),
		UserID:          p.Recipient(),
		Type:            p.NotificationType(),
		Title:           content.Title,
		Body:            content.Body,
		Action:          content.Action,
		SecondaryAction: content.SecondaryAction,
		Metadata:        metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.inbox.CreateNotification(ctx, rec); err != nil {
		return failed(ChannelInApp, fmt.Sprintf("failed to store notification: %v", err))
	}
	s.notify(ctx, InboxEvent{Kind: InboxCreated, UserID: rec.UserID, NotificationID: rec.ID, Record: &rec})
	return succeeded(ChannelInApp, rec.ID)
}

func (s *InAppSender) notify(ctx context.Context, ev InboxEvent) {
	for _, o := range s.observers {
		o(ctx, ev)
	}
}

// List returns the user's inbox, newest first.
func (s *InAppSender) List(ctx context.Context, userID string, opts ListOptions) ([]InboxRecord, error) {
	if !s.configured() {
		return nil, ErrInboxNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inbox.ListNotifications(ctx, userID, opts)
}

// MarkRead marks one of the user's notifications as read.
func (s *InAppSender) MarkRead(ctx context.Context, id, userID string) error {
	if !s.configured() {
		return ErrInboxNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.inbox.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.notify(ctx, InboxEvent{Kind: InboxRead, UserID: userID, NotificationID: id})
	return nil
}

// MarkAllRead marks every unread notification as read and returns how many
// changed.
func (s *InAppSender) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if !s.configured() {
		return 0, ErrInboxNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	changed, err := s.inbox.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.notify(ctx, InboxEvent{Kind: InboxReadAll, UserID: userID})
	}
	return changed, nil
}

// UnreadCount returns the number of unread, unarchived notifications.
func (s *InAppSender) UnreadCount(ctx context.Context, userID string) (int, error) {
	if !s.configured() {
		return 0, ErrInboxNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inbox.UnreadCount(ctx, userID)
}
