//go:build integration

package pgstore_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
	"github.com/tribehub/notify/pkg/notifications/pgstore"
	"github.com/tribehub/notify/pkg/pg"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "notify",
				"POSTGRES_PASSWORD": "notify",
				"POSTGRES_DB":       "notify",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := pg.Config{
		ConnectionString: fmt.Sprintf("postgres://notify:notify@%s:%s/notify?sslmode=disable", host, port.Port()),
		MaxOpenConns:     4,
		MaxIdleConns:     1,
		RetryAttempts:    5,
		RetryInterval:    500 * time.Millisecond,
		MigrationsTable:  "notify_schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, cfg, pgstore.Migrations, pgstore.MigrationsDir, logger.Discard()))
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	id := uuid.NewString()
	var address any
	if email != "" {
		address = email
	}
	_, err := pool.Exec(context.Background(), `INSERT INTO auth.users (id, email) VALUES ($1, $2)`, id, address)
	require.NoError(t, err)
	return id
}

func TestStore_Postgres(t *testing.T) {
	pool := startPostgres(t)
	store := pgstore.New(pool, pgstore.ServiceRole)

	t.Run("inbox", func(t *testing.T) {
		ctx := context.Background()
		userID := createUser(t, pool, "sam@tribehub.test")
		base := time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)

		var ids []string
		for i := range 3 {
			id := uuid.NewString()
			ids = append(ids, id)
			require.NoError(t, store.CreateNotification(ctx, notifications.InboxRecord{
				ID:        id,
				UserID:    userID,
				Type:      notifications.TypeNewFollower,
				Title:     fmt.Sprintf("title %d", i),
				Body:      "body",
				Action:    &notifications.Action{Label: "View profile", URL: "https://tribehub.test/profile/sam"},
				Metadata:  json.RawMessage(`{"payload":{"type":"new_follower"}}`),
				Archived:  i == 2,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		recs, err := store.ListNotifications(ctx, userID, notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, ids[1], recs[0].ID)
		assert.Equal(t, "View profile", recs[0].Action.Label)
		assert.Nil(t, recs[0].SecondaryAction)
		assert.JSONEq(t, `{"payload":{"type":"new_follower"}}`, string(recs[0].Metadata))

		all, err := store.ListNotifications(ctx, userID, notifications.ListOptions{IncludeArchived: true, Limit: 1})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, ids[2], all[0].ID)

		count, err := store.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, store.MarkRead(ctx, ids[0], userID))
		require.NoError(t, store.MarkRead(ctx, ids[0], userID))
		require.ErrorIs(t, store.MarkRead(ctx, ids[0], createUser(t, pool, "")), notifications.ErrNotFound)
		require.ErrorIs(t, store.MarkRead(ctx, "not-a-uuid", userID), notifications.ErrNotFound)

		changed, err := store.MarkAllRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, changed)

		count, err = store.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, count)

		err = store.CreateNotification(ctx, notifications.InboxRecord{ID: uuid.NewString(), UserID: uuid.NewString(), Type: notifications.TypeNewFollower})
		require.ErrorIs(t, err, notifications.ErrNotFound)
	})

	t.Run("preferences", func(t *testing.T) {
		ctx := context.Background()
		userID := createUser(t, pool, "")

		_, err := store.GetPreferences(ctx, userID)
		require.ErrorIs(t, err, notifications.ErrNotFound)

		prefs := notifications.DefaultPreferences(userID)
		prefs.PushEnabled = false
		prefs.QuietHours = notifications.QuietHours{Enabled: true, Start: "23:00", End: "07:00"}
		prefs.Channels[notifications.TypeEventComment] = []notifications.Channel{notifications.ChannelEmail}
		require.NoError(t, store.UpsertPreferences(ctx, prefs))

		got, err := store.GetPreferences(ctx, userID)
		require.NoError(t, err)
		assert.False(t, got.PushEnabled)
		assert.True(t, got.QuietHours.Enabled)
		assert.Equal(t, "23:00", got.QuietHours.Start)
		assert.Equal(t, []notifications.Channel{notifications.ChannelEmail}, got.Channels[notifications.TypeEventComment])

		prefs.PushEnabled = true
		require.NoError(t, store.UpsertPreferences(ctx, prefs))
		got, err = store.GetPreferences(ctx, userID)
		require.NoError(t, err)
		assert.True(t, got.PushEnabled)
	})

	t.Run("subscriptions", func(t *testing.T) {
		ctx := context.Background()
		first := createUser(t, pool, "")
		second := createUser(t, pool, "")
		endpoint := "https://push.test/" + uuid.NewString()

		require.NoError(t, store.SaveSubscription(ctx, notifications.PushSubscription{UserID: first, Endpoint: endpoint, P256dh: "p", Auth: "a"}))
		require.NoError(t, store.SaveSubscription(ctx, notifications.PushSubscription{UserID: second, Endpoint: endpoint, P256dh: "p2", Auth: "a2", Mode: notifications.PushModeSilent}))

		subs, err := store.ListSubscriptions(ctx, first)
		require.NoError(t, err)
		assert.Empty(t, subs)

		subs, err = store.ListSubscriptions(ctx, second)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, notifications.PushModeSilent, subs[0].Mode)
		assert.Equal(t, "p2", subs[0].P256dh)

		require.NoError(t, store.DeleteSubscriptions(ctx, []string{subs[0].ID}))
		subs, err = store.ListSubscriptions(ctx, second)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("email lookup", func(t *testing.T) {
		ctx := context.Background()

		address, err := store.EmailByUserID(ctx, createUser(t, pool, "ana@tribehub.test"))
		require.NoError(t, err)
		assert.Equal(t, "ana@tribehub.test", address)

		_, err = store.EmailByUserID(ctx, createUser(t, pool, ""))
		require.ErrorIs(t, err, notifications.ErrNotFound)

		_, err = store.EmailByUserID(ctx, uuid.NewString())
		require.ErrorIs(t, err, notifications.ErrNotFound)
	})

	t.Run("scheduled", func(t *testing.T) {
		ctx := context.Background()
		userID := createUser(t, pool, "")
		scheduler, err := notifications.NewScheduler(store)
		require.NoError(t, err)

		now := time.Now().UTC().Truncate(time.Millisecond)
		payload := notifications.EventReminder2h{
			Base:       notifications.To(userID, "en"),
			EventTitle: "Jazz Night",
			EventSlug:  "jazz-night",
			EventTime:  "20:00",
		}
		id, err := scheduler.Schedule(ctx, payload, now.Add(-time.Minute))
		require.NoError(t, err)
		_, err = scheduler.Schedule(ctx, payload, now.Add(time.Hour))
		require.NoError(t, err)

		claimed, err := store.ClaimDue(ctx, now, 10, 3, time.Minute)
		require.NoError(t, err)
		require.Len(t, claimed, 1)
		assert.Equal(t, id, claimed[0].ID)
		assert.Equal(t, 1, claimed[0].Attempts)

		decoded, err := notifications.DecodePayload(claimed[0].Payload)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)

		again, err := store.ClaimDue(ctx, now, 10, 3, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, again)

		require.NoError(t, store.MarkFailed(ctx, id, "push notifications are not configured"))
		retried, err := store.ClaimDue(ctx, now, 10, 3, time.Minute)
		require.NoError(t, err)
		require.Len(t, retried, 1)
		assert.Equal(t, 2, retried[0].Attempts)

		require.NoError(t, store.MarkSent(ctx, id, now))
		sn, err := store.GetScheduled(ctx, id)
		require.NoError(t, err)
		assert.False(t, sn.Pending())
		assert.Empty(t, sn.LastError)

		cancelled, err := scheduler.CancelFor(ctx, userID, notifications.TypeEventReminder2h)
		require.NoError(t, err)
		assert.Equal(t, 1, cancelled)

		require.ErrorIs(t, store.MarkSent(ctx, uuid.NewString(), now), notifications.ErrNotFound)
	})

	t.Run("user role", func(t *testing.T) {
		ctx := context.Background()
		userID := createUser(t, pool, "")
		userStore := pgstore.New(pool, pgstore.UserRole)

		err := userStore.CreateNotification(ctx, notifications.InboxRecord{ID: uuid.NewString(), UserID: userID, Type: notifications.TypeNewFollower})
		require.ErrorIs(t, err, pgstore.ErrReadOnlyRole)

		count, err := userStore.UnreadCount(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
