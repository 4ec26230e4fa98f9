package pgstore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tribehub/notify/pkg/notifications"
)

const scheduledColumns = `id, user_id, type, payload, send_at, sent_at, cancelled_at,
	locked_until, attempts, last_error, created_at`

// CreateScheduled inserts a pending scheduled notification.
func (s *Store) CreateScheduled(ctx context.Context, sn notifications.ScheduledNotification) error {
	if err := s.requireService(); err != nil {
		return err
	}
	if sn.ID == "" {
		return errors.New("scheduled notification ID is required")
	}
	if sn.CreatedAt.IsZero() {
		sn.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO scheduled_notifications (id, user_id, type, payload, send_at, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sn.ID, sn.UserID, string(sn.Type), []byte(sn.Payload), sn.SendAt, sn.Attempts, sn.LastError, sn.CreatedAt,
	)
	if err != nil {
		return mapError(err, "create scheduled notification")
	}
	return nil
}

// CancelScheduled cancels userID's pending rows of type t.
func (s *Store) CancelScheduled(ctx context.Context, userID string, t notifications.Type) (int, error) {
	if err := s.requireService(); err != nil {
		return 0, err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE scheduled_notifications
		SET cancelled_at = now()
		WHERE user_id = $1 AND type = $2
		  AND sent_at IS NULL AND cancelled_at IS NULL`,
		userID, string(t),
	)
	if err != nil {
		return 0, mapError(err, "cancel scheduled notifications")
	}
	return int(tag.RowsAffected()), nil
}

// ClaimDue locks due rows with FOR UPDATE SKIP LOCKED so concurrent
// dispatchers never claim the same row, then leases them until now+lease.
func (s *Store) ClaimDue(ctx context.Context, now time.Time, limit, maxAttempts int, lease time.Duration) ([]notifications.ScheduledNotification, error) {
	if err := s.requireService(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		WITH due AS (
			SELECT id
			FROM scheduled_notifications
			WHERE sent_at IS NULL
			  AND cancelled_at IS NULL
			  AND send_at <= $1
			  AND attempts < $2
			  AND (locked_until IS NULL OR locked_until <= $1)
			ORDER BY send_at, id
			LIMIT NULLIF($3::int, 0)
			FOR UPDATE SKIP LOCKED
		)
		UPDATE scheduled_notifications sn
		SET attempts     = sn.attempts + 1,
		    locked_until = $4
		FROM due
		WHERE sn.id = due.id
		RETURNING sn.id, sn.user_id, sn.type, sn.payload, sn.send_at, sn.sent_at, sn.cancelled_at,
		          sn.locked_until, sn.attempts, sn.last_error, sn.created_at`,
		now, maxAttempts, limit, now.Add(lease),
	)
	if err != nil {
		return nil, mapError(err, "claim scheduled notifications")
	}
	defer rows.Close()

	out := []notifications.ScheduledNotification{}
	for rows.Next() {
		sn, err := scanScheduled(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled notification: %w", err)
		}
		out = append(out, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "claim scheduled notifications")
	}

	// UPDATE ... RETURNING has no defined order.
	slices.SortFunc(out, func(a, b notifications.ScheduledNotification) int {
		return cmp.Or(a.SendAt.Compare(b.SendAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// MarkSent records a successful delivery at at.
func (s *Store) MarkSent(ctx context.Context, id string, at time.Time) error {
	if err := s.requireService(); err != nil {
		return err
	}
	return s.execOne(ctx, "mark scheduled notification sent", `
		UPDATE scheduled_notifications
		SET sent_at = $2, locked_until = NULL, last_error = ''
		WHERE id = $1`,
		id, at,
	)
}

// MarkFailed releases the claim and records reason as the last error.
func (s *Store) MarkFailed(ctx context.Context, id, reason string) error {
	if err := s.requireService(); err != nil {
		return err
	}
	return s.execOne(ctx, "mark scheduled notification failed", `
		UPDATE scheduled_notifications
		SET last_error = $2, locked_until = NULL
		WHERE id = $1`,
		id, reason,
	)
}

// GetScheduled returns a single scheduled row.
func (s *Store) GetScheduled(ctx context.Context, id string) (notifications.ScheduledNotification, error) {
	sn, err := scanScheduled(s.db.QueryRow(ctx, `
		SELECT `+scheduledColumns+`
		FROM scheduled_notifications
		WHERE id = $1`,
		id,
	))
	if err != nil {
		return sn, mapError(err, "get scheduled notification")
	}
	return sn, nil
}

func (s *Store) execOne(ctx context.Context, op, sql string, args ...any) error {
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, notifications.ErrNotFound)
	}
	return nil
}

func scanScheduled(row pgx.Row) (notifications.ScheduledNotification, error) {
	var (
		sn      notifications.ScheduledNotification
		typ     string
		payload []byte
	)
	err := row.Scan(
		&sn.ID, &sn.UserID, &typ, &payload, &sn.SendAt, &sn.SentAt, &sn.CancelledAt,
		&sn.LockedUntil, &sn.Attempts, &sn.LastError, &sn.CreatedAt,
	)
	if err != nil {
		return sn, err
	}
	sn.Type = notifications.Type(typ)
	sn.Payload = payload
	return sn, nil
}
