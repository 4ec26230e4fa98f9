// Package webpush delivers Web Push messages (RFC 8030) with VAPID
// authentication (RFC 8292).
//
//	client, err := webpush.NewClient(cfg)
//	if errors.Is(err, webpush.ErrNotConfigured) {
//	    // push is disabled
//	}
//	err = client.Send(ctx, sub, payload, webpush.UrgencyHigh)
//	if errors.Is(err, webpush.ErrSubscriptionGone) {
//	    // delete the subscription
//	}
package webpush
