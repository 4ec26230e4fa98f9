package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/logger"
	"github.com/tribehub/notify/pkg/notifications"
)

func reminder(userID string) notifications.EventReminder2h {
	return notifications.EventReminder2h{
		Base:       notifications.To(userID, "en"),
		EventTitle: "Jazz Night",
		EventSlug:  "jazz-night",
		EventTime:  "20:00",
	}
}

func TestScheduler_Constructors(t *testing.T) {
	t.Parallel()

	_, err := notifications.NewScheduler(nil)
	require.ErrorIs(t, err, notifications.ErrNilStore)

	_, err = notifications.NewDispatcher(nil, nil)
	require.ErrorIs(t, err, notifications.ErrNilStore)

	_, err = notifications.NewDispatcher(notifications.NewMemoryStore(), nil)
	require.Error(t, err)
}

func TestDispatcher_SendsDueNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, "12:00")
	scheduler, err := notifications.NewScheduler(h.store)
	require.NoError(t, err)
	dispatcher, err := notifications.NewDispatcher(h.store, h.notifier, notifications.WithDispatcherLogger(logger.Discard()))
	require.NoError(t, err)

	now := fixedClock("18:00")()
	dueID, err := scheduler.Schedule(ctx, reminder("u1"), now.Add(-time.Minute))
	require.NoError(t, err)
	laterID, err := scheduler.Schedule(ctx, reminder("u2"), now.Add(time.Hour))
	require.NoError(t, err)

	stats, err := dispatcher.DispatchDue(ctx, now, 0)
	require.NoError(t, err)
	assert.Equal(t, notifications.DispatchStats{Claimed: 1, Sent: 1}, stats)

	due, ok := h.store.Scheduled(dueID)
	require.True(t, ok)
	assert.NotNil(t, due.SentAt)
	assert.Equal(t, 1, due.Attempts)
	assert.False(t, due.Pending())

	later, ok := h.store.Scheduled(laterID)
	require.True(t, ok)
	assert.True(t, later.Pending())
	assert.Zero(t, later.Attempts)

	recs, err := h.store.ListNotifications(ctx, "u1", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, notifications.TypeEventReminder2h, recs[0].Type)

	stats, err = dispatcher.DispatchDue(ctx, now, 0)
	require.NoError(t, err)
	assert.Zero(t, stats.Claimed, "a sent row is never claimed again")
}

func TestDispatcher_StopsAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	n, err := notifications.NewNotifier(newRenderer(t), nil, nil, nil, nil, nil, notifications.WithNotifierLogger(logger.Discard()))
	require.NoError(t, err)
	scheduler, err := notifications.NewScheduler(store)
	require.NoError(t, err)
	dispatcher, err := notifications.NewDispatcher(store, n,
		notifications.WithMaxAttempts(2),
		notifications.WithDispatcherLogger(logger.Discard()),
	)
	require.NoError(t, err)

	now := fixedClock("18:00")()
	id, err := scheduler.Schedule(ctx, reminder("u1"), now)
	require.NoError(t, err)

	for attempt := 1; attempt <= 2; attempt++ {
		stats, err := dispatcher.DispatchDue(ctx, now, 0)
		require.NoError(t, err)
		assert.Equal(t, notifications.DispatchStats{Claimed: 1, Failed: 1}, stats, "attempt %d", attempt)
	}

	stats, err := dispatcher.DispatchDue(ctx, now, 0)
	require.NoError(t, err)
	assert.Zero(t, stats.Claimed)

	sn, ok := store.Scheduled(id)
	require.True(t, ok)
	assert.Equal(t, 2, sn.Attempts)
	assert.Nil(t, sn.SentAt)
	assert.Contains(t, sn.LastError, "in-app inbox is not configured")
	assert.Contains(t, sn.LastError, "push notifications are not configured")
}

func TestDispatcher_LeaseHidesClaimedRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	scheduler, err := notifications.NewScheduler(store)
	require.NoError(t, err)

	now := fixedClock("18:00")()
	_, err = scheduler.Schedule(ctx, reminder("u1"), now)
	require.NoError(t, err)

	claimed, err := store.ClaimDue(ctx, now, 10, 3, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	again, err := store.ClaimDue(ctx, now.Add(time.Minute), 10, 3, 5*time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	expired, err := store.ClaimDue(ctx, now.Add(6*time.Minute), 10, 3, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, 2, expired[0].Attempts)
}

func TestScheduler_CancelFor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := notifications.NewMemoryStore()
	scheduler, err := notifications.NewScheduler(store)
	require.NoError(t, err)

	now := fixedClock("18:00")()
	for range 2 {
		_, err := scheduler.Schedule(ctx, reminder("u1"), now)
		require.NoError(t, err)
	}
	_, err = scheduler.Schedule(ctx, reminder("u2"), now)
	require.NoError(t, err)

	cancelled, err := scheduler.CancelFor(ctx, "u1", notifications.TypeEventReminder2h)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)

	claimed, err := store.ClaimDue(ctx, now, 10, 3, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, "u2", claimed[0].UserID)

	_, err = scheduler.Schedule(ctx, nil, now)
	require.ErrorIs(t, err, notifications.ErrUnknownType)
}

func TestDispatcher_Run(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "12:00")
	scheduler, err := notifications.NewScheduler(h.store)
	require.NoError(t, err)
	dispatcher, err := notifications.NewDispatcher(h.store, h.notifier,
		notifications.WithInterval(10*time.Millisecond),
		notifications.WithDispatcherLogger(logger.Discard()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	id, err := scheduler.Schedule(ctx, reminder("u1"), time.Now().Add(-time.Second))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		sn, ok := h.store.Scheduled(id)
		return ok && sn.SentAt != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
