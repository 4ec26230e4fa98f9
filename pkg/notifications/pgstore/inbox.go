package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tribehub/notify/pkg/notifications"
	"github.com/tribehub/notify/pkg/pg"
)

const notificationColumns = `id, user_id, type, title, body, action, secondary_action, metadata,
	read, read_at, archived, created_at, updated_at`

// CreateNotification inserts rec. It needs the service role since the row
// usually belongs to someone other than the caller.
func (s *Store) CreateNotification(ctx context.Context, rec notifications.InboxRecord) error {
	if err := s.requireService(); err != nil {
		return err
	}

	action, err := marshalAction(rec.Action)
	if err != nil {
		return err
	}
	secondary, err := marshalAction(rec.SecondaryAction)
	if err != nil {
		return err
	}
	metadata := []byte(rec.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.UserID, string(rec.Type), rec.Title, rec.Body, action, secondary, metadata,
		rec.Read, rec.ReadAt, rec.Archived, createdAt, updatedAt,
	)
	if err != nil {
		return mapError(err, "create notification")
	}
	return nil
}

// ListNotifications returns userID's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.InboxRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		  AND ($2::bool = false OR NOT read)
		  AND ($3::bool OR NOT archived)
		ORDER BY created_at DESC, id
		LIMIT NULLIF($4::int, 0) OFFSET $5`,
		userID, opts.OnlyUnread, opts.IncludeArchived, opts.Limit, max(opts.Offset, 0),
	)
	if err != nil {
		return nil, mapError(err, "list notifications")
	}
	defer rows.Close()

	out := []notifications.InboxRecord{}
	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list notifications")
	}
	return out, nil
}

// MarkRead marks one of userID's notifications read. Marking an already
// read row is a no-op; a row owned by someone else is ErrNotFound.
func (s *Store) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications
		SET read       = true,
		    read_at    = COALESCE(read_at, now()),
		    updated_at = CASE WHEN read THEN updated_at ELSE now() END
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return mapError(err, "mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of userID read through
// mark_all_notifications_read and returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var changed int
	err := s.db.QueryRow(ctx, `SELECT mark_all_notifications_read($1)`, userID).Scan(&changed)
	if err != nil {
		return 0, mapError(err, "mark all notifications read")
	}
	return changed, nil
}

// UnreadCount returns get_unread_count for userID.
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT get_unread_count($1)`, userID).Scan(&count)
	if err != nil {
		return 0, mapError(err, "count unread notifications")
	}
	return count, nil
}

func scanNotification(row pgx.Row) (notifications.InboxRecord, error) {
	var (
		rec                    notifications.InboxRecord
		typ                    string
		action, secondary, raw []byte
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &typ, &rec.Title, &rec.Body, &action, &secondary, &raw,
		&rec.Read, &rec.ReadAt, &rec.Archived, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return rec, err
	}
	rec.Type = notifications.Type(typ)
	if rec.Action, err = unmarshalAction(action); err != nil {
		return rec, err
	}
	if rec.SecondaryAction, err = unmarshalAction(secondary); err != nil {
		return rec, err
	}
	if len(raw) > 0 {
		rec.Metadata = json.RawMessage(raw)
	}
	return rec, nil
}

func marshalAction(a *notifications.Action) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}
	return b, nil
}

func unmarshalAction(b []byte) (*notifications.Action, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var a notifications.Action
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return &a, nil
}

// mapError translates driver errors into the notifications sentinels.
func mapError(err error, op string) error {
	switch {
	case pg.IsNotFoundError(err), pg.IsInvalidTextRepresentation(err):
		return fmt.Errorf("%s: %w", op, notifications.ErrNotFound)
	case pg.IsForeignKeyViolationError(err):
		return fmt.Errorf("%s: unknown user: %w", op, notifications.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
