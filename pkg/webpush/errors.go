package webpush

import "errors"

var (
	ErrNotConfigured       = errors.New("webpush: VAPID keys are not configured")
	ErrInvalidSubscription = errors.New("webpush: invalid subscription")
	ErrSubscriptionGone    = errors.New("webpush: subscription is no longer valid")
	ErrDeliveryFailed      = errors.New("webpush: delivery failed")
)
