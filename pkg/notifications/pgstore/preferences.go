package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tribehub/notify/pkg/notifications"
)

// GetPreferences returns notifications.ErrNotFound when the user has no
// stored row; the resolver falls back to the defaults then.
func (s *Store) GetPreferences(ctx context.Context, userID string) (notifications.UserPreferences, error) {
	var (
		prefs    notifications.UserPreferences
		channels []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT user_id, channels, email_enabled, push_enabled, in_app_enabled,
		       quiet_hours_enabled, quiet_hours_start, quiet_hours_end, updated_at
		FROM notification_preferences
		WHERE user_id = $1`,
		userID,
	).Scan(
		&prefs.UserID, &channels, &prefs.EmailEnabled, &prefs.PushEnabled, &prefs.InAppEnabled,
		&prefs.QuietHours.Enabled, &prefs.QuietHours.Start, &prefs.QuietHours.End, &prefs.UpdatedAt,
	)
	if err != nil {
		return prefs, mapError(err, "get preferences")
	}

	prefs.Channels = map[notifications.Type][]notifications.Channel{}
	if len(channels) > 0 {
		if err := json.Unmarshal(channels, &prefs.Channels); err != nil {
			return prefs, fmt.Errorf("decode channel overrides: %w", err)
		}
	}
	return prefs, nil
}

// UpsertPreferences stores prefs, replacing the user's existing row.
func (s *Store) UpsertPreferences(ctx context.Context, prefs notifications.UserPreferences) error {
	overrides := prefs.Channels
	if overrides == nil {
		overrides = map[notifications.Type][]notifications.Channel{}
	}
	channels, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encode channel overrides: %w", err)
	}
	updatedAt := prefs.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO notification_preferences (
			user_id, channels, email_enabled, push_enabled, in_app_enabled,
			quiet_hours_enabled, quiet_hours_start, quiet_hours_end, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			channels            = EXCLUDED.channels,
			email_enabled       = EXCLUDED.email_enabled,
			push_enabled        = EXCLUDED.push_enabled,
			in_app_enabled      = EXCLUDED.in_app_enabled,
			quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
			quiet_hours_start   = EXCLUDED.quiet_hours_start,
			quiet_hours_end     = EXCLUDED.quiet_hours_end,
			updated_at          = EXCLUDED.updated_at`,
		prefs.UserID, channels, prefs.EmailEnabled, prefs.PushEnabled, prefs.InAppEnabled,
		prefs.QuietHours.Enabled, prefs.QuietHours.Start, prefs.QuietHours.End, updatedAt,
	)
	if err != nil {
		return mapError(err, "upsert preferences")
	}
	return nil
}
