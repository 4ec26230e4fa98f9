package notifications

import "errors"

var (
	// ErrUnknownType means a payload has no registered renderer.
	ErrUnknownType = errors.New("unknown notification type")

	// ErrInvalidPayload is returned for payloads that can't be decoded or
	// have no recipient.
	ErrInvalidPayload = errors.New("invalid notification payload")

	// ErrMissingTranslation means a template references a key that the
	// translation files don't define.
	ErrMissingTranslation = errors.New("missing notification translation")

	ErrNotFound           = errors.New("not found")
	ErrInvalidQuietHours  = errors.New("quiet hours must use HH:MM")
	ErrInvalidChannel     = errors.New("invalid notification channel")
	ErrInboxNotConfigured = errors.New(msgInAppNotConfigured)
	ErrNilRenderer        = errors.New("notifier requires a renderer")
	ErrNilStore           = errors.New("store is required")
)

// Fixed failure reasons reported in ChannelResult.Error.
const (
	msgInAppNotConfigured = "in-app inbox is not configured"
	msgPushNotConfigured  = "push notifications are not configured"
	msgEmailNotConfigured = "email delivery is not configured"
	msgNoEmailAddress     = "no email address found for user"
)
