package notifications

import (
	"context"
	"encoding/json"
	"time"
)

// InboxRecord is a persisted in-app notification.
type InboxRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Type            Type            `json:"type"`
	Title           string          `json:"title"`
	Body            string          `json:"body"`
	Action          *Action         `json:"action,omitempty"`
	SecondaryAction *Action         `json:"secondary_action,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	Read            bool            `json:"read"`
	ReadAt          *time.Time      `json:"read_at,omitempty"`
	Archived        bool            `json:"archived"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ListOptions filters and paginates inbox listings.
type ListOptions struct {
	Limit           int  // 0 means no limit
	Offset          int  // rows to skip
	OnlyUnread      bool // skip read notifications
	IncludeArchived bool // archived rows are hidden by default
}

// Inbox persists in-app notifications. Implementations used by the
// in-app sender must be able to write rows for any user.
type Inbox interface {
	CreateNotification(ctx context.Context, rec InboxRecord) error
	ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]InboxRecord, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// PreferenceStore persists per-user preferences. GetPreferences returns
// ErrNotFound when the user never saved any.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (UserPreferences, error)
	UpsertPreferences(ctx context.Context, prefs UserPreferences) error
}

// PushSubscription is one registered browser or device.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	Mode      PushMode  `json:"notification_mode"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriptionStore persists push subscriptions.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error)
	SaveSubscription(ctx context.Context, sub PushSubscription) error
	DeleteSubscriptions(ctx context.Context, ids []string) error
}

// EmailLookup resolves a user's address from the auth system. It returns
// ErrNotFound when the user has none.
type EmailLookup interface {
	EmailByUserID(ctx context.Context, userID string) (string, error)
}

// ScheduledNotification is a payload to be sent at SendAt.
type ScheduledNotification struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        Type            `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	SendAt      time.Time       `json:"send_at"`
	SentAt      *time.Time      `json:"sent_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	LockedUntil *time.Time      `json:"locked_until,omitempty"`
	Attempts    int             `json:"attempts"`
	LastError   string          `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Pending reports whether the row may still be dispatched.
func (s ScheduledNotification) Pending() bool {
	return s.SentAt == nil && s.CancelledAt == nil
}

// ScheduledStore persists deferred notifications.
type ScheduledStore interface {
	CreateScheduled(ctx context.Context, sn ScheduledNotification) error
	// CancelScheduled cancels pending rows of type t for userID and returns
	// how many were cancelled.
	CancelScheduled(ctx context.Context, userID string, t Type) (int, error)
	// ClaimDue locks up to limit pending rows with SendAt <= now and fewer
	// than maxAttempts attempts, increments their attempts and returns them.
	// A claimed row is invisible to other claimers until lease expires.
	ClaimDue(ctx context.Context, now time.Time, limit, maxAttempts int, lease time.Duration) ([]ScheduledNotification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
}
