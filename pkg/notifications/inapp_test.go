package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/notifications"
)

func TestInAppSender_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	sender := notifications.NewInAppSender(store, notifications.WithInAppClock(fixedClock("10:15")))
	content := newRenderer(t).MustRender(jazzNight()).InApp

	res := sender.Send(ctx, jazzNight(), content)
	require.True(t, res.Success)
	require.NotEmpty(t, res.MessageID)

	recs, err := sender.List(ctx, "u1", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, res.MessageID, rec.ID)
	assert.Equal(t, notifications.TypeRSVPConfirmation, rec.Type)
	assert.Equal(t, content.Title, rec.Title)
	assert.Equal(t, content.Body, rec.Body)
	assert.Equal(t, content.Action, rec.Action)
	assert.False(t, rec.Read)
	assert.Equal(t, fixedClock("10:15")(), rec.CreatedAt)

	var meta struct {
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Metadata, &meta))
	decoded, err := notifications.DecodePayload(meta.Payload)
	require.NoError(t, err)
	assert.Equal(t, jazzNight(), decoded)
}

func TestInAppSender_ReadState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	sender := notifications.NewInAppSender(store)
	content := notifications.InAppContent{Title: "t", Body: "b"}

	var ids []string
	for range 3 {
		res := sender.Send(ctx, jazzNight(), content)
		require.True(t, res.Success)
		ids = append(ids, res.MessageID)
	}

	count, err := sender.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, sender.MarkRead(ctx, ids[0], "u1"))
	require.ErrorIs(t, sender.MarkRead(ctx, ids[1], "someone-else"), notifications.ErrNotFound)

	unread, err := sender.List(ctx, "u1", notifications.ListOptions{OnlyUnread: true})
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	changed, err := sender.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	count, err = sender.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInAppSender_StoreFailure(t *testing.T) {
	t.Parallel()

	inbox := &countingInbox{MemoryStore: notifications.NewMemoryStore(), err: errors.New("permission denied for table notifications")}
	res := notifications.NewInAppSender(inbox, notifications.WithInAppTimeout(time.Second)).
		Send(context.Background(), jazzNight(), notifications.InAppContent{Title: "t", Body: "b"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "permission denied")
	assert.Equal(t, 1, inbox.Creates())
}

func TestInAppSender_NotConfigured(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sender := notifications.NewInAppSender(nil)
	res := sender.Send(ctx, jazzNight(), notifications.InAppContent{})
	assert.False(t, res.Success)
	assert.Equal(t, "in-app inbox is not configured", res.Error)

	_, err := sender.List(ctx, "u1", notifications.ListOptions{})
	require.ErrorIs(t, err, notifications.ErrInboxNotConfigured)
	_, err = sender.UnreadCount(ctx, "u1")
	require.ErrorIs(t, err, notifications.ErrInboxNotConfigured)
}

func TestMemoryStore_ListPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	base := fixedClock("09:00")()
	for i := range 5 {
		require.NoError(t, store.CreateNotification(ctx, notifications.InboxRecord{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Type:      notifications.TypeNewFollower,
			Archived:  i == 4,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := store.ListNotifications(ctx, "u1", notifications.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].ID)
	assert.Equal(t, "b", recs[1].ID)

	all, err := store.ListNotifications(ctx, "u1", notifications.ListOptions{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "e", all[0].ID)

	empty, err := store.ListNotifications(ctx, "u1", notifications.ListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_SaveSubscriptionReplacesEndpoint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	require.NoError(t, store.SaveSubscription(ctx, notifications.PushSubscription{UserID: "u1", Endpoint: "https://push.test/1"}))
	require.NoError(t, store.SaveSubscription(ctx, notifications.PushSubscription{UserID: "u2", Endpoint: "https://push.test/1"}))

	u1, err := store.ListSubscriptions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u1)

	u2, err := store.ListSubscriptions(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, u2, 1)
	assert.NotEmpty(t, u2[0].ID)
	assert.Equal(t, notifications.PushModeSoundAndVibration, u2[0].Mode)
}

func TestInAppSender_Observer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var events []notifications.InboxEvent
	sender := notifications.NewInAppSender(notifications.NewMemoryStore(),
		notifications.WithInboxObserver(func(_ context.Context, ev notifications.InboxEvent) {
			events = append(events, ev)
		}),
	)

	res := sender.Send(ctx, jazzNight(), notifications.InAppContent{Title: "t", Body: "b"})
	require.True(t, res.Success)
	require.NoError(t, sender.MarkRead(ctx, res.MessageID, "u1"))
	require.ErrorIs(t, sender.MarkRead(ctx, "missing", "u1"), notifications.ErrNotFound)

	changed, err := sender.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, changed)

	sender.Send(ctx, jazzNight(), notifications.InAppContent{Title: "t2", Body: "b2"})
	_, err = sender.MarkAllRead(ctx, "u1")
	require.NoError(t, err)

	kinds := make([]notifications.InboxEventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
		assert.Equal(t, "u1", ev.UserID)
	}
	assert.Equal(t, []notifications.InboxEventKind{
		notifications.InboxCreated,
		notifications.InboxRead,
		notifications.InboxCreated,
		notifications.InboxReadAll,
	}, kinds)
	require.NotNil(t, events[0].Record)
	assert.Equal(t, res.MessageID, events[0].Record.ID)
	assert.Equal(t, res.MessageID, events[1].NotificationID)
}
