package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tribehub/notify/pkg/notifications"
)

// ListSubscriptions returns every device userID registered.
func (s *Store) ListSubscriptions(ctx context.Context, userID string) ([]notifications.PushSubscription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, endpoint, p256dh, auth, notification_mode, user_agent, created_at
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, mapError(err, "list push subscriptions")
	}
	defer rows.Close()

	out := []notifications.PushSubscription{}
	for rows.Next() {
		var (
			sub  notifications.PushSubscription
			mode string
		)
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &mode, &sub.UserAgent, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		sub.Mode = notifications.PushMode(mode)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list push subscriptions")
	}
	return out, nil
}

// SaveSubscription registers a device. An endpoint is unique across users:
// re-registering moves it to the new owner and refreshes its keys.
func (s *Store) SaveSubscription(ctx context.Context, sub notifications.PushSubscription) error {
	if sub.UserID == "" || sub.Endpoint == "" {
		return errors.New("user ID and endpoint are required")
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Mode == "" {
		sub.Mode = notifications.PushModeSoundAndVibration
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, notification_mode, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id           = EXCLUDED.user_id,
			p256dh            = EXCLUDED.p256dh,
			auth              = EXCLUDED.auth,
			notification_mode = EXCLUDED.notification_mode,
			user_agent        = EXCLUDED.user_agent`,
		sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth, string(sub.Mode), sub.UserAgent, sub.CreatedAt,
	)
	if err != nil {
		return mapError(err, "save push subscription")
	}
	return nil
}

// DeleteSubscriptions removes expired devices. The push sender calls it
// for endpoints the push service reported gone.
func (s *Store) DeleteSubscriptions(ctx context.Context, ids []string) error {
	if err := s.requireService(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM push_subscriptions WHERE id = ANY($1::uuid[])`, ids); err != nil {
		return mapError(err, "delete push subscriptions")
	}
	return nil
}
