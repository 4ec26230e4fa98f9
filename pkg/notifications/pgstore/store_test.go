package pgstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/notifications"
)

// failingDB fails every call so tests can tell whether the store reached
// the database.
type failingDB struct {
	calls int
}

var errUnreachable = errors.New("database reached")

func (d *failingDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	d.calls++
	return pgconn.CommandTag{}, errUnreachable
}

func (d *failingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	d.calls++
	return nil, errUnreachable
}

func (d *failingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	d.calls++
	return failingRow{}
}

type failingRow struct{}

func (failingRow) Scan(...any) error { return errUnreachable }

func TestUserRoleRefusesServiceOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := &failingDB{}
	store := New(db, UserRole)
	assert.Equal(t, "user", store.Role().String())

	checks := map[string]error{
		"create notification":  store.CreateNotification(ctx, notifications.InboxRecord{ID: "n1", UserID: "u2"}),
		"delete subscriptions": store.DeleteSubscriptions(ctx, []string{"s1"}),
		"create scheduled":     store.CreateScheduled(ctx, notifications.ScheduledNotification{ID: "s1"}),
		"mark sent":            store.MarkSent(ctx, "s1", time.Now()),
		"mark failed":          store.MarkFailed(ctx, "s1", "boom"),
	}
	_, err := store.EmailByUserID(ctx, "u2")
	checks["email lookup"] = err
	_, err = store.CancelScheduled(ctx, "u2", notifications.TypeEventReminder2h)
	checks["cancel scheduled"] = err
	_, err = store.ClaimDue(ctx, time.Now(), 10, 3, time.Minute)
	checks["claim due"] = err

	for name, err := range checks {
		assert.ErrorIs(t, err, ErrReadOnlyRole, name)
	}
	assert.Zero(t, db.calls)
}

func TestUserRoleReachesDatabaseForOwnData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := &failingDB{}
	store := New(db, UserRole)

	_, err := store.ListNotifications(ctx, "u1", notifications.ListOptions{})
	require.ErrorIs(t, err, errUnreachable)
	require.ErrorIs(t, store.MarkRead(ctx, "n1", "u1"), errUnreachable)
	_, err = store.MarkAllRead(ctx, "u1")
	require.ErrorIs(t, err, errUnreachable)
	_, err = store.UnreadCount(ctx, "u1")
	require.ErrorIs(t, err, errUnreachable)
	_, err = store.GetPreferences(ctx, "u1")
	require.ErrorIs(t, err, errUnreachable)
	require.ErrorIs(t, store.UpsertPreferences(ctx, notifications.DefaultPreferences("u1")), errUnreachable)
	require.ErrorIs(t, store.SaveSubscription(ctx, notifications.PushSubscription{UserID: "u1", Endpoint: "https://push.test/1"}), errUnreachable)

	assert.Equal(t, 7, db.calls)
}

func TestServiceRoleSkipsEmptyDelete(t *testing.T) {
	t.Parallel()

	db := &failingDB{}
	store := New(db, ServiceRole)
	assert.Equal(t, "service", store.Role().String())
	require.NoError(t, store.DeleteSubscriptions(context.Background(), nil))
	assert.Zero(t, db.calls)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{name: "no rows", err: pgx.ErrNoRows, notFound: true},
		{name: "malformed uuid", err: &pgconn.PgError{Code: "22P02"}, notFound: true},
		{name: "unknown user", err: &pgconn.PgError{Code: "23503"}, notFound: true},
		{name: "duplicate", err: &pgconn.PgError{Code: "23505"}},
		{name: "other", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := mapError(tt.err, "op")
			assert.Equal(t, tt.notFound, errors.Is(err, notifications.ErrNotFound))
			assert.Contains(t, err.Error(), "op: ")
		})
	}
}

func TestActionRoundTrip(t *testing.T) {
	t.Parallel()

	b, err := marshalAction(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	a, err := unmarshalAction(nil)
	require.NoError(t, err)
	assert.Nil(t, a)

	b, err = marshalAction(&notifications.Action{Label: "View event", URL: "https://tribehub.test/events/jazz-night"})
	require.NoError(t, err)
	a, err = unmarshalAction(b)
	require.NoError(t, err)
	assert.Equal(t, "View event", a.Label)

	_, err = unmarshalAction([]byte("{"))
	require.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	t.Parallel()

	entries, err := Migrations.ReadDir(MigrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_notifications.sql", entries[0].Name())
}
